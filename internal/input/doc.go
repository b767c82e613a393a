// Package input decodes JSON and YAML documents into [toon.Value] trees.
//
// Decoding preserves the key order of the source document so that the
// encoded TOON text follows the order the author wrote. Inputs compressed
// with gzip, zstd, or lz4 are decompressed transparently.
package input

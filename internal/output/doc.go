// Package output provides destinations for encoded TOON documents.
//
// The package is organized around two concerns:
//
//   - Writers (writer.go): Pluggable output destinations via the [Writer]
//     interface, with [StdoutWriter] and [FileWriter] implementations that
//     optionally compress what they write.
//
//   - Registry (registry.go): Named writer factories selected by the
//     --compress flag of the encode command.
package output

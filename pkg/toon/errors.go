package toon

import "github.com/cockroachdb/errors"

// Option validation errors. They are reported before any output is produced.
var (
	ErrInvalidIndent       = errors.New("toon: indent must be a non-negative integer")
	ErrInvalidDelimiter    = errors.New("toon: delimiter must be exactly one character")
	ErrInvalidLengthMarker = errors.New("toon: length marker must be empty or exactly one character")
)

// Normalization errors.
var (
	ErrUnsupportedType = errors.New("toon: unsupported type")
	ErrMaxDepth        = errors.New("toon: maximum nesting depth exceeded")
)

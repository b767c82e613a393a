package input

import "github.com/cockroachdb/errors"

var (
	// ErrSyntax is returned when a document cannot be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownFormat is returned for an input format name that is not supported.
	ErrUnknownFormat = errors.New("unknown input format")

	// ErrTooLarge is returned when an input exceeds MaxInputSize after decompression.
	ErrTooLarge = errors.New("input too large")
)

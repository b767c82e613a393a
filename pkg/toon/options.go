package toon

import (
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Defaults applied by DefaultOptions.
const (
	DefaultIndent    = 2
	DefaultDelimiter = ","
)

// Supported delimiters.
const (
	DelimiterComma = ","
	DelimiterTab   = "\t"
	DelimiterPipe  = "|"
)

// Options configures a single encoding call. Options are passed by value and
// never modified by the encoder.
type Options struct {
	// Indent is the number of spaces per nesting level (default: 2).
	Indent int

	// Delimiter separates inline array values, tabular cells, and tabular
	// header keys (default: ",").
	Delimiter string

	// LengthMarker is an optional character placed before array lengths,
	// e.g. "#" renders "[#3]". Empty disables the marker.
	LengthMarker string

	// Sink receives the encoded text instead of it being returned.
	Sink io.Writer

	// Adapters are consulted by the normalizer before the built-in rules.
	Adapters []Adapter
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Indent:    DefaultIndent,
		Delimiter: DefaultDelimiter,
	}
}

// Validate checks the option values. It is called before any output is
// written.
func (o Options) Validate() error {
	if o.Indent < 0 {
		return errors.Wrapf(ErrInvalidIndent, "got %d", o.Indent)
	}

	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return errors.Wrapf(ErrInvalidDelimiter, "got %q", o.Delimiter)
	}

	if o.LengthMarker != "" && utf8.RuneCountInString(o.LengthMarker) != 1 {
		return errors.Wrapf(ErrInvalidLengthMarker, "got %q", o.LengthMarker)
	}

	return nil
}

// Option configures an encoding call.
// Use the With* functions to create Options.
type Option func(*Options)

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) Option { return func(o *Options) { o.Indent = n } }

// WithDelimiter sets the field delimiter. It must be a single character.
func WithDelimiter(d string) Option { return func(o *Options) { o.Delimiter = d } }

// WithLengthMarker sets the character placed before array lengths.
func WithLengthMarker(m string) Option { return func(o *Options) { o.LengthMarker = m } }

// WithSink directs the output to w. Encode then returns an empty string.
func WithSink(w io.Writer) Option { return func(o *Options) { o.Sink = w } }

// WithAdapters registers additional normalizer rules. They take precedence
// over the built-in rules and are consulted in the given order.
func WithAdapters(adapters ...Adapter) Option {
	return func(o *Options) { o.Adapters = append(o.Adapters, adapters...) }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

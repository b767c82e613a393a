// Package toon encodes Go values into TOON, a compact, indentation-based
// text notation designed for deterministic, token-efficient serialization of
// structured data.
//
// Basic usage:
//
//	out, err := toon.Encode(toon.Object{
//	    {"id", 123},
//	    {"name", "Ada"},
//	    {"tags", []string{"reading", "gaming"}},
//	})
//	// id: 123
//	// name: Ada
//	// tags[2]: reading,gaming
//
// With options:
//
//	out, err := toon.Encode(v,
//	    toon.WithDelimiter(toon.DelimiterTab),
//	    toon.WithLengthMarker("#"),
//	)
//
// Arrays of mappings that share the same keys and hold only primitive values
// are written in tabular form, one delimiter-joined row per element:
//
//	items[2]{sku,qty,price}:
//	  A1,2,9.99
//	  B2,1,14.5
//
// Other arrays of containers use the list form with "- " markers. Encoding is
// one-directional; the package has no decoder.
package toon

import (
	"io"
	"strings"
)

// Encode normalizes v and renders it as TOON. When a sink is configured via
// WithSink the text is written there and the returned string is empty.
func Encode(v any, opts ...Option) (string, error) {
	return EncodeWithOptions(v, buildOptions(opts))
}

// EncodeTo normalizes v and writes its TOON rendering to w.
func EncodeTo(w io.Writer, v any, opts ...Option) error {
	o := buildOptions(opts)
	o.Sink = w

	_, err := EncodeWithOptions(v, o)

	return err
}

// EncodeWithOptions is Encode with an explicit options value. Options are
// validated before anything is normalized or written.
func EncodeWithOptions(v any, o Options) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}

	value, err := Normalize(v, o.Adapters...)
	if err != nil {
		return "", err
	}

	return encodeValidated(value, o)
}

// EncodeValue renders an already normalized Value.
func EncodeValue(v Value, o Options) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}

	return encodeValidated(v, o)
}

func encodeValidated(v Value, o Options) (string, error) {
	if o.Sink != nil {
		w := newLineWriter(o.Sink, o.Indent)
		newEncoder(w, o).encode(v)

		return "", w.err
	}

	var b strings.Builder

	w := newLineWriter(&b, o.Indent)
	newEncoder(w, o).encode(v)

	return b.String(), w.err
}

func newEncoder(w *lineWriter, o Options) *encoder {
	return &encoder{
		w:         w,
		delimiter: o.Delimiter,
		marker:    o.LengthMarker,
	}
}

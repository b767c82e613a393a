package toon

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/golang-module/carbon/v2"
)

// Adapter is a normalizer rule for host types the generic cases do not cover.
// It returns a replacement (a Value or any other normalizable host value) and
// true when it handles v, or false to let the next rule try.
type Adapter func(v any) (any, bool)

// timestampLayout is UTC ISO-8601 with second precision and a literal Z.
const timestampLayout = "2006-01-02T15:04:05Z"

// builtinAdapters are consulted after caller adapters, in order.
var builtinAdapters = []Adapter{
	adaptTime,
	adaptBig,
	adaptJSONNumber,
	adaptTextMarshaler,
	adaptStringer,
}

func adaptTime(v any) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return String(FormatTimestamp(t)), true
	case *time.Time:
		if t == nil {
			return Null(), true
		}

		return String(FormatTimestamp(*t)), true
	case carbon.Carbon:
		if t.Error != nil {
			return Null(), true
		}

		return String(t.Layout(timestampLayout, carbon.UTC)), true
	case *carbon.Carbon:
		if t == nil || t.Error != nil {
			return Null(), true
		}

		return String(t.Layout(timestampLayout, carbon.UTC)), true
	}

	return nil, false
}

// FormatTimestamp renders t the way the normalizer does: UTC, second
// precision, trailing Z.
func FormatTimestamp(t time.Time) string {
	return carbon.CreateFromStdTime(t).Layout(timestampLayout, carbon.UTC)
}

func adaptBig(v any) (any, bool) {
	switch n := v.(type) {
	case *big.Int:
		return BigInt(n), true
	case big.Int:
		return BigInt(&n), true
	case *big.Float:
		if n == nil {
			return Null(), true
		}

		if n.IsInf() {
			return Null(), true
		}

		f, _ := n.Float64()

		return Float(f), true
	}

	return nil, false
}

func adaptJSONNumber(v any) (any, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return nil, false
	}

	return parseNumber(string(n)), true
}

// parseNumber converts a JSON number literal. Literals without a fraction or
// exponent become integers (arbitrary precision when needed).
func parseNumber(lit string) Value {
	if !strings.ContainsAny(lit, ".eE") {
		if i, ok := new(big.Int).SetString(lit, 10); ok {
			return BigInt(i)
		}
	}

	f, _, err := big.ParseFloat(lit, 10, 64, big.ToNearestEven)
	if err != nil {
		return String(lit)
	}

	if f.IsInf() {
		return Null()
	}

	out, _ := f.Float64()

	return Float(out)
}

func adaptTextMarshaler(v any) (any, bool) {
	m, ok := v.(encoding.TextMarshaler)
	if !ok {
		return nil, false
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), true
	}

	text, err := m.MarshalText()
	if err != nil {
		return nil, false
	}

	return String(string(text)), true
}

// adaptStringer turns symbol-like scalars (enum types with a String method)
// into their textual name.
func adaptStringer(v any) (any, bool) {
	s, ok := v.(fmt.Stringer)
	if !ok {
		return nil, false
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return String(s.String()), true
	default:
		return nil, false
	}
}

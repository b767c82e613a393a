package toon

import (
	"math"
	"math/big"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "boolean"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return "unknown"
	}
}

// Number is a finite numeric value that remembers whether it originated from
// an integral or a fractional source.
type Number struct {
	frac bool
	f    float64
	i    int64
	big  *big.Int
}

// IsFractional reports whether the number came from a floating point source.
func (n Number) IsFractional() bool { return n.frac }

// Float returns the fractional value. Integral numbers are converted.
func (n Number) Float() float64 {
	switch {
	case n.frac:
		return n.f
	case n.big != nil:
		f, _ := new(big.Float).SetInt(n.big).Float64()
		return f
	default:
		return float64(n.i)
	}
}

// Int returns the integral value and whether it fits in an int64.
func (n Number) Int() (int64, bool) {
	if n.frac {
		return 0, false
	}

	if n.big != nil {
		return 0, false
	}

	return n.i, true
}

// BigInt returns the integral value as a big.Int, or nil for fractional numbers.
func (n Number) BigInt() *big.Int {
	if n.frac {
		return nil
	}

	if n.big != nil {
		return new(big.Int).Set(n.big)
	}

	return big.NewInt(n.i)
}

// Field is a single key/value entry of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Value is the canonical, immutable representation the encoder operates on.
// The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	num    Number
	str    string
	items  []Value
	fields []Field
	index  map[string]int
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// Int returns an integral number.
func Int(i int64) Value { return Value{kind: NumberKind, num: Number{i: i}} }

// Uint returns an integral number, switching to arbitrary precision above
// math.MaxInt64.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}

	return BigInt(new(big.Int).SetUint64(u))
}

// BigInt returns an arbitrary-precision integral number. A nil argument yields
// Null.
func BigInt(i *big.Int) Value {
	if i == nil {
		return Null()
	}

	if i.IsInt64() {
		return Int(i.Int64())
	}

	return Value{kind: NumberKind, num: Number{big: new(big.Int).Set(i)}}
}

// Float returns a fractional number. NaN and ±Inf collapse to Null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}

	return Value{kind: NumberKind, num: Number{frac: true, f: f}}
}

// String returns a text value.
func String(s string) Value { return Value{kind: StringKind, str: s} }

// Sequence returns an ordered list of values. The items are copied.
func Sequence(items ...Value) Value {
	return Value{kind: SequenceKind, items: append(make([]Value, 0, len(items)), items...)}
}

// Mapping returns an ordered mapping. Duplicate keys keep the position of the
// first occurrence and the value of the last.
func Mapping(fields ...Field) Value {
	out := make([]Field, 0, len(fields))

	// Small mappings use a linear scan.
	var index map[string]int
	if len(fields) > 8 {
		index = make(map[string]int, len(fields))
	}

	for _, f := range fields {
		if pos, ok := lookupField(out, index, f.Key); ok {
			out[pos].Value = f.Value
			continue
		}

		if index != nil {
			index[f.Key] = len(out)
		}

		out = append(out, f)
	}

	return Value{kind: MappingKind, fields: out, index: index}
}

func lookupField(fields []Field, index map[string]int, key string) (int, bool) {
	if index != nil {
		pos, ok := index[key]
		return pos, ok
	}

	for i := range fields {
		if fields[i].Key == key {
			return i, true
		}
	}

	return 0, false
}

// F is shorthand for building a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// IsPrimitive reports whether v is Null, Boolean, Number, or String.
func (v Value) IsPrimitive() bool {
	return v.kind != SequenceKind && v.kind != MappingKind
}

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload.
func (v Value) Number() Number { return v.num }

// Text returns the string payload.
func (v Value) Text() string { return v.str }

// Items returns the elements of a Sequence. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Fields returns the entries of a Mapping in insertion order. The slice must
// not be modified.
func (v Value) Fields() []Field { return v.fields }

// Len returns the number of elements of a Sequence or entries of a Mapping.
func (v Value) Len() int {
	switch v.kind {
	case SequenceKind:
		return len(v.items)
	case MappingKind:
		return len(v.fields)
	default:
		return 0
	}
}

// Lookup returns the value stored under key in a Mapping.
func (v Value) Lookup(key string) (Value, bool) {
	pos, ok := lookupField(v.fields, v.index, key)
	if !ok {
		return Value{}, false
	}

	return v.fields[pos].Value, true
}

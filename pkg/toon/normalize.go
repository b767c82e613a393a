package toon

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// MaxDepth bounds the nesting depth accepted by Normalize. Deeper input is
// rejected with ErrMaxDepth, which also stops self-referential structures.
const MaxDepth = 1000

// Object is an ordered key/value literal. Use it where a Go map would lose
// the insertion order:
//
//	toon.Object{{"id", 1}, {"name", "Ada"}}
type Object []Member

// Member is a single entry of an Object.
type Member struct {
	Key   string
	Value any
}

// Normalize converts a host value into the Value model. Caller adapters are
// consulted first, then the built-in rules for timestamps, big numbers,
// json.Number, text marshalers, and stringers, and finally the generic
// reflection-based cases.
func Normalize(input any, adapters ...Adapter) (Value, error) {
	n := normalizer{adapters: adapters}
	return n.normalize(input, 0)
}

type normalizer struct {
	adapters []Adapter
}

func (n *normalizer) normalize(input any, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, errors.Wrapf(ErrMaxDepth, "limit %d", MaxDepth)
	}

	switch v := input.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case *Value:
		if v == nil {
			return Null(), nil
		}

		return *v, nil
	}

	if out, ok := adapt(n.adapters, input); ok {
		return n.normalize(out, depth+1)
	}

	switch v := input.(type) {
	case Object:
		return n.object(v, depth)
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case float64:
		return Float(v), nil
	case []any:
		return n.slice(v, depth)
	case map[string]any:
		return n.stringMap(v, depth)
	}

	if out, ok := adapt(builtinAdapters, input); ok {
		return n.normalize(out, depth+1)
	}

	return n.generic(reflect.ValueOf(input), depth)
}

func adapt(adapters []Adapter, input any) (any, bool) {
	for _, a := range adapters {
		if out, ok := a(input); ok {
			return out, true
		}
	}

	return nil, false
}

func (n *normalizer) object(obj Object, depth int) (Value, error) {
	fields := make([]Field, 0, len(obj))

	for _, m := range obj {
		v, err := n.normalize(m.Value, depth+1)
		if err != nil {
			return Value{}, err
		}

		fields = append(fields, Field{Key: m.Key, Value: v})
	}

	return Mapping(fields...), nil
}

func (n *normalizer) slice(items []any, depth int) (Value, error) {
	out := make([]Value, 0, len(items))

	for _, item := range items {
		v, err := n.normalize(item, depth+1)
		if err != nil {
			return Value{}, err
		}

		out = append(out, v)
	}

	return Sequence(out...), nil
}

func (n *normalizer) stringMap(m map[string]any, depth int) (Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))

	for _, k := range keys {
		v, err := n.normalize(m[k], depth+1)
		if err != nil {
			return Value{}, err
		}

		fields = append(fields, Field{Key: k, Value: v})
	}

	return Mapping(fields...), nil
}

// generic handles the reflection-based cases once no fast path or adapter matched.
func (n *normalizer) generic(rv reflect.Value, depth int) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}

		return n.normalize(rv.Elem().Interface(), depth+1)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32:
		// Use the shortest decimal of the float32 so 3.14 stays 3.14.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		return Float(f), nil
	case reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Null(), nil
		}

		return Float(f), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}

		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}

		return n.list(rv, depth)
	case reflect.Array:
		return n.list(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}

		return n.mapping(rv, depth)
	case reflect.Struct:
		fields, err := n.structFields(rv, depth)
		if err != nil {
			return Value{}, err
		}

		return Mapping(fields...), nil
	default:
		return Value{}, errors.Wrapf(ErrUnsupportedType, "%s", rv.Type())
	}
}

func (n *normalizer) list(rv reflect.Value, depth int) (Value, error) {
	out := make([]Value, 0, rv.Len())

	for i, count := 0, rv.Len(); i < count; i++ {
		v, err := n.normalize(rv.Index(i).Interface(), depth+1)
		if err != nil {
			return Value{}, err
		}

		out = append(out, v)
	}

	return Sequence(out...), nil
}

// mapping converts a Go map. Go maps carry no order, so keys are stringified
// and sorted to keep the output deterministic.
func (n *normalizer) mapping(rv reflect.Value, depth int) (Value, error) {
	type entry struct {
		key string
		val reflect.Value
	}

	entries := make([]entry, 0, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: stringifyKey(iter.Key()), val: iter.Value()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	fields := make([]Field, 0, len(entries))

	for _, e := range entries {
		v, err := n.normalize(e.val.Interface(), depth+1)
		if err != nil {
			return Value{}, err
		}

		fields = append(fields, Field{Key: e.key, Value: v})
	}

	return Mapping(fields...), nil
}

func stringifyKey(k reflect.Value) string {
	if k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}

	if k.CanInterface() {
		if out, ok := adapt([]Adapter{adaptTextMarshaler, adaptStringer}, k.Interface()); ok {
			if v, isValue := out.(Value); isValue && v.kind == StringKind {
				return v.str
			}
		}
	}

	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	case reflect.Bool:
		return strconv.FormatBool(k.Bool())
	default:
		return fmt.Sprint(k.Interface())
	}
}

// structFields collects exported fields in declaration order, following the
// encoding/json tag conventions. Untagged embedded structs are flattened.
func (n *normalizer) structFields(rv reflect.Value, depth int) ([]Field, error) {
	rt := rv.Type()
	fields := make([]Field, 0, rt.NumField())

	for i, count := 0, rt.NumField(); i < count; i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)

		name, omitEmpty, skip := parseJSONTag(sf)
		if skip {
			continue
		}

		if sf.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}

				inner = inner.Elem()
			}

			if inner.Kind() == reflect.Struct {
				embedded, err := n.structFields(inner, depth+1)
				if err != nil {
					return nil, err
				}

				fields = append(fields, embedded...)

				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		if omitEmpty && fv.IsZero() {
			continue
		}

		if name == "" {
			name = sf.Name
		}

		v, err := n.normalize(fv.Interface(), depth+1)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", sf.Name)
		}

		fields = append(fields, Field{Key: name, Value: v})
	}

	return fields, nil
}

func parseJSONTag(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}

	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}

	return name, omitEmpty, false
}

package input

import (
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/cockroachdb/errors"

	"github.com/hupe1980/toon/pkg/toon"
)

// DecodeJSON decodes a single JSON document, keeping object key order.
// Duplicate keys keep their first position and their last value.
func DecodeJSON(data []byte) (toon.Value, error) {
	// jsonparser is lenient about trailing garbage and some malformed input.
	if !json.Valid(data) {
		return toon.Value{}, errors.Wrap(ErrSyntax, "invalid JSON document")
	}

	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return toon.Value{}, errors.Wrapf(ErrSyntax, "reading JSON document: %v", err)
	}

	return parseJSONValue(dataType, raw, 0)
}

func parseJSONValue(dataType jsonparser.ValueType, data []byte, depth int) (toon.Value, error) {
	if depth > toon.MaxDepth {
		return toon.Value{}, errors.Wrapf(toon.ErrMaxDepth, "JSON nesting exceeds %d levels", toon.MaxDepth)
	}

	switch dataType {
	case jsonparser.Null:
		return toon.Null(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return toon.Value{}, errors.Wrapf(ErrSyntax, "boolean %q", data)
		}

		return toon.Bool(b), nil
	case jsonparser.Number:
		// json.Number keeps integers beyond int64 exact.
		return toon.Normalize(json.Number(data))
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return toon.Value{}, errors.Wrapf(ErrSyntax, "string %q: %v", data, err)
		}

		return toon.String(s), nil
	case jsonparser.Array:
		return parseJSONArray(data, depth)
	case jsonparser.Object:
		return parseJSONObject(data, depth)
	default:
		return toon.Value{}, errors.Wrapf(ErrSyntax, "unexpected JSON value %q", data)
	}
}

func parseJSONArray(data []byte, depth int) (toon.Value, error) {
	var (
		items   []toon.Value
		itemErr error
	)

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if itemErr != nil {
			return
		}

		if err != nil {
			itemErr = err
			return
		}

		v, err := parseJSONValue(dataType, value, depth+1)
		if err != nil {
			itemErr = err
			return
		}

		items = append(items, v)
	})
	if itemErr != nil {
		return toon.Value{}, itemErr
	}

	if err != nil {
		return toon.Value{}, errors.Wrapf(ErrSyntax, "reading JSON array: %v", err)
	}

	return toon.Sequence(items...), nil
}

func parseJSONObject(data []byte, depth int) (toon.Value, error) {
	var fields []toon.Field

	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := parseJSONValue(dataType, value, depth+1)
		if err != nil {
			return err
		}

		fields = append(fields, toon.F(string(key), v))

		return nil
	})
	if err != nil {
		if errors.Is(err, toon.ErrMaxDepth) || errors.Is(err, ErrSyntax) {
			return toon.Value{}, err
		}

		return toon.Value{}, errors.Wrapf(ErrSyntax, "reading JSON object: %v", err)
	}

	return toon.Mapping(fields...), nil
}

package toon

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MarshalJSON renders v as compact JSON, keeping mapping field order.
// Numbers use the same digits as the TOON encoding.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.b))
	case NumberKind:
		// Every FormatNumber spelling is also a valid JSON number.
		buf.WriteString(FormatNumber(v.num))
	case StringKind:
		return appendJSONString(buf, v.str)
	case SequenceKind:
		buf.WriteByte('[')

		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case MappingKind:
		buf.WriteByte('{')

		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := appendJSONString(buf, f.Key); err != nil {
				return err
			}

			buf.WriteByte(':')

			if err := appendJSON(buf, f.Value); err != nil {
				return err
			}
		}

		buf.WriteByte('}')
	}

	return nil
}

func appendJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return err
	}

	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)

	return nil
}

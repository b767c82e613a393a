package toon

import (
	"strconv"
	"strings"
)

const listItemPrefix = "- "

// encoder walks a Value tree and emits lines through a lineWriter.
type encoder struct {
	w         *lineWriter
	delimiter string
	marker    string
}

func (e *encoder) encode(v Value) {
	switch v.kind {
	case MappingKind:
		e.mapping(v, 0)
	case SequenceKind:
		e.array("", "", v, 0)
	default:
		e.w.push(0, EncodeScalar(v, e.delimiter))
	}
}

// mapping writes every field of m at depth.
func (e *encoder) mapping(m Value, depth int) {
	for _, f := range m.fields {
		e.field("", f, depth)
	}
}

// field writes one key/value entry. prefix is prepended to the first line,
// which is how list items splice their first field onto the "- " line.
func (e *encoder) field(prefix string, f Field, depth int) {
	key := EncodeKey(f.Key, e.delimiter)

	switch f.Value.kind {
	case SequenceKind:
		e.array(prefix, key, f.Value, depth)
	case MappingKind:
		e.w.push(depth, prefix+key+":")
		e.mapping(f.Value, depth+1)
	default:
		e.w.push(depth, prefix+key+": "+EncodeScalar(f.Value, e.delimiter))
	}
}

// array writes a sequence labelled key (empty at the root and for nested
// anonymous arrays). The header goes on a line at depth; rows and list items
// go at depth+1.
func (e *encoder) array(prefix, key string, seq Value, depth int) {
	items := seq.items

	if len(items) == 0 {
		e.w.push(depth, prefix+key+e.header(0, nil))
		return
	}

	if allPrimitive(items) {
		e.w.push(depth, prefix+key+e.header(len(items), nil)+" "+e.joinScalars(items))
		return
	}

	if cols, ok := tabularColumns(items); ok {
		e.tabular(prefix, key, items, cols, depth)
		return
	}

	e.w.push(depth, prefix+key+e.header(len(items), nil))

	for _, item := range items {
		e.listItem(item, depth+1)
	}
}

func (e *encoder) tabular(prefix, key string, rows []Value, cols []string, depth int) {
	e.w.push(depth, prefix+key+e.header(len(rows), cols))

	cells := make([]Value, len(cols))

	for _, row := range rows {
		for i, col := range cols {
			cells[i], _ = cell(row, i, col)
		}

		e.w.push(depth+1, e.joinScalars(cells))
	}
}

// listItem writes one "- " entry of a list-form array at depth.
func (e *encoder) listItem(item Value, depth int) {
	switch item.kind {
	case SequenceKind:
		e.array(listItemPrefix, "", item, depth)
	case MappingKind:
		e.mappingItem(item, depth)
	default:
		e.w.push(depth, listItemPrefix+EncodeScalar(item, e.delimiter))
	}
}

// mappingItem writes a mapping list item: the first field shares the "- "
// line, the remaining fields follow at depth+1.
func (e *encoder) mappingItem(m Value, depth int) {
	if len(m.fields) == 0 {
		e.w.push(depth, strings.TrimSpace(listItemPrefix))
		return
	}

	first := m.fields[0]

	if first.Value.kind == MappingKind {
		// Nested fields go two levels down, below the sibling fields.
		e.w.push(depth, listItemPrefix+EncodeKey(first.Key, e.delimiter)+":")
		e.mapping(first.Value, depth+2)
	} else {
		e.field(listItemPrefix, first, depth)
	}

	for _, f := range m.fields[1:] {
		e.field("", f, depth+1)
	}
}

// header renders the length bracket, optional column list, and colon.
func (e *encoder) header(n int, cols []string) string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(e.marker)
	b.WriteString(strconv.Itoa(n))

	if e.delimiter != DefaultDelimiter {
		b.WriteString(e.delimiter)
	}

	b.WriteByte(']')

	if cols != nil {
		b.WriteByte('{')

		for i, col := range cols {
			if i > 0 {
				b.WriteString(e.delimiter)
			}

			b.WriteString(EncodeKey(col, e.delimiter))
		}

		b.WriteByte('}')
	}

	b.WriteByte(':')

	return b.String()
}

func (e *encoder) joinScalars(values []Value) string {
	var b strings.Builder

	for i, v := range values {
		if i > 0 {
			b.WriteString(e.delimiter)
		}

		b.WriteString(EncodeScalar(v, e.delimiter))
	}

	return b.String()
}

func allPrimitive(items []Value) bool {
	for _, item := range items {
		if !item.IsPrimitive() {
			return false
		}
	}

	return true
}

// tabularColumns reports whether rows qualify for the tabular form and
// returns the column order taken from the first row. Every row must be a
// non-empty mapping with the same key set and primitive values only.
func tabularColumns(rows []Value) ([]string, bool) {
	first := rows[0]
	if first.kind != MappingKind || len(first.fields) == 0 {
		return nil, false
	}

	cols := make([]string, len(first.fields))
	for i, f := range first.fields {
		cols[i] = f.Key
	}

	for _, row := range rows {
		if row.kind != MappingKind || len(row.fields) != len(cols) {
			return nil, false
		}

		for i, col := range cols {
			v, ok := cell(row, i, col)
			if !ok || !v.IsPrimitive() {
				return nil, false
			}
		}
	}

	return cols, true
}

// cell returns the value of column col, which sits at position i when the
// row lists its keys in header order.
func cell(row Value, i int, col string) (Value, bool) {
	if i < len(row.fields) && row.fields[i].Key == col {
		return row.fields[i].Value, true
	}

	return row.Lookup(col)
}

package toon

import (
	"io"
	"strings"
)

// lineWriter assembles output lines. Lines are separated by a single newline
// and the output never ends with one. The first write error is latched and
// suppresses every later write.
type lineWriter struct {
	out    io.Writer
	indent int
	pad    string
	lines  int
	err    error
}

func newLineWriter(out io.Writer, indent int) *lineWriter {
	return &lineWriter{out: out, indent: indent}
}

// push writes line at the given nesting depth.
func (w *lineWriter) push(depth int, line string) {
	if w.err != nil {
		return
	}

	var b strings.Builder

	if w.lines > 0 {
		b.WriteByte('\n')
	}

	b.WriteString(w.padding(depth))
	b.WriteString(strings.TrimRight(line, " \t"))

	w.lines++
	_, w.err = io.WriteString(w.out, b.String())
}

func (w *lineWriter) padding(depth int) string {
	n := depth * w.indent
	if len(w.pad) < n {
		w.pad = strings.Repeat(" ", 2*n)
	}

	return w.pad[:n]
}

package stats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/toon/pkg/toon"
)

func users() toon.Value {
	row := func(id int64, name string) toon.Value {
		return toon.Mapping(toon.F("id", toon.Int(id)), toon.F("name", toon.String(name)))
	}

	return toon.Mapping(toon.F("users", toon.Sequence(row(1, "Alice"), row(2, "Bob"))))
}

func TestMeasure(t *testing.T) {
	e, err := Measure("users.json", users(), toon.DefaultOptions())
	require.NoError(t, err)

	// {"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}
	assert.Equal(t, 57, e.JSONBytes)
	// users[2]{id,name}:\n  1,Alice\n  2,Bob
	assert.Equal(t, 36, e.TOONBytes)
	assert.Equal(t, 3, e.TOONLines)
	assert.Equal(t, 15, e.JSONTokens)
	assert.Equal(t, 9, e.TOONTokens)
	assert.InDelta(t, 36.8, e.Savings, 0.001)
}

func TestMeasure_IgnoresSink(t *testing.T) {
	var buf bytes.Buffer

	opts := toon.DefaultOptions()
	opts.Sink = &buf

	e, err := Measure("x", users(), opts)
	require.NoError(t, err)
	assert.Equal(t, 36, e.TOONBytes)
	assert.Zero(t, buf.Len())
}

func TestMeasure_InvalidOptions(t *testing.T) {
	opts := toon.DefaultOptions()
	opts.Indent = -1

	_, err := Measure("x", users(), opts)
	require.ErrorIs(t, err, toon.ErrInvalidIndent)
}

func TestNewReport(t *testing.T) {
	r := NewReport([]Entry{
		{Source: "a", JSONBytes: 100, TOONBytes: 60, TOONLines: 3},
		{Source: "b", JSONBytes: 50, TOONBytes: 60, TOONLines: 2},
	})

	assert.Equal(t, "total", r.Total.Source)
	assert.Equal(t, 150, r.Total.JSONBytes)
	assert.Equal(t, 120, r.Total.TOONBytes)
	assert.Equal(t, 5, r.Total.TOONLines)
	assert.Equal(t, 38, r.Total.JSONTokens)
	assert.InDelta(t, 20.0, r.Total.Savings, 0.001)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(0))
	assert.Equal(t, 1, EstimateTokens(1))
	assert.Equal(t, 1, EstimateTokens(4))
	assert.Equal(t, 2, EstimateTokens(5))
}

func TestSavings(t *testing.T) {
	assert.InDelta(t, 0.0, savings(0, 10), 0)
	assert.InDelta(t, -20.0, savings(50, 60), 0.001)
	assert.InDelta(t, 33.3, savings(3, 2), 0.001)
}

// ---------------------------------------------------------------------------
// Write
// ---------------------------------------------------------------------------

func sampleReport() *Report {
	return NewReport([]Entry{
		{Source: "a.json", JSONBytes: 100, TOONBytes: 60, TOONLines: 3},
		{Source: "b.yaml", JSONBytes: 50, TOONBytes: 60, TOONLines: 2},
	})
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatTable, false))

	out := buf.String()
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "a.json")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "-20.0%")
	assert.Contains(t, out, "total")
	assert.NotContains(t, out, "\033[")
}

func TestWrite_TableSingleEntryHasNoTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewReport([]Entry{{Source: "only", JSONBytes: 10, TOONBytes: 5}}), FormatTable, false))
	assert.NotContains(t, buf.String(), "total")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatJSON, false))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatYAML, false))
	assert.Contains(t, buf.String(), "savingsPercent: 40")

	var got Report
	require.NoError(t, sigsyaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleReport(), "xml", false)
	require.ErrorContains(t, err, "unknown report format")
}

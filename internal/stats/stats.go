// Package stats compares the size of TOON encodings with compact JSON.
package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/toon/pkg/toon"
)

// charsPerToken is the rough number of characters per LLM token used for
// token estimates.
const charsPerToken = 4

// Entry is the size comparison for one input.
type Entry struct {
	Source     string  `json:"source"`
	JSONBytes  int     `json:"jsonBytes"`
	TOONBytes  int     `json:"toonBytes"`
	TOONLines  int     `json:"toonLines"`
	JSONTokens int     `json:"jsonTokens"`
	TOONTokens int     `json:"toonTokens"`
	Savings    float64 `json:"savingsPercent"`
}

// Report is a set of entries plus their total.
type Report struct {
	Entries []Entry `json:"entries"`
	Total   Entry   `json:"total"`
}

// Measure encodes v with opts and compares it against compact JSON.
func Measure(source string, v toon.Value, opts toon.Options) (Entry, error) {
	jsonText, err := v.MarshalJSON()
	if err != nil {
		return Entry{}, fmt.Errorf("rendering JSON for %s: %w", source, err)
	}

	opts.Sink = nil

	toonText, err := toon.EncodeValue(v, opts)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding %s: %w", source, err)
	}

	e := Entry{
		Source:    source,
		JSONBytes: len(jsonText),
		TOONBytes: len(toonText),
		TOONLines: countLines(toonText),
	}
	e.finish()

	return e, nil
}

// NewReport derives the token estimates and savings of entries and totals
// them.
func NewReport(entries []Entry) *Report {
	total := Entry{Source: "total"}

	for i := range entries {
		e := &entries[i]
		e.finish()

		total.JSONBytes += e.JSONBytes
		total.TOONBytes += e.TOONBytes
		total.TOONLines += e.TOONLines
	}

	total.finish()

	return &Report{Entries: entries, Total: total}
}

func (e *Entry) finish() {
	e.JSONTokens = EstimateTokens(e.JSONBytes)
	e.TOONTokens = EstimateTokens(e.TOONBytes)
	e.Savings = savings(e.JSONBytes, e.TOONBytes)
}

// EstimateTokens approximates the LLM token count of n bytes of text.
func EstimateTokens(n int) int {
	return (n + charsPerToken - 1) / charsPerToken
}

// savings is the size reduction of after relative to before, in percent,
// rounded to one decimal.
func savings(before, after int) float64 {
	if before == 0 {
		return 0
	}

	pct := float64(before-after) * 100 / float64(before)

	return math.Round(pct*10) / 10
}

func countLines(s string) int {
	if s == "" {
		return 0
	}

	return strings.Count(s, "\n") + 1
}

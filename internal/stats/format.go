package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	sigsyaml "sigs.k8s.io/yaml"
)

// Supported report formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the supported report formats.
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = cellStyle.Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// Write renders report in format. Color only affects the table format.
func Write(w io.Writer, report *Report, format string, color bool) error {
	switch format {
	case FormatTable, "":
		_, err := fmt.Fprintln(w, renderTable(report, color))
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case FormatYAML:
		data, err := sigsyaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}

		_, err = w.Write(data)

		return err
	default:
		return fmt.Errorf("unknown report format %q (must be one of %s)", format, strings.Join(Formats, ", "))
	}
}

var tableHeaders = []string{"SOURCE", "JSON BYTES", "TOON BYTES", "TOON LINES", "JSON TOKENS", "TOON TOKENS", "SAVED"}

func renderTable(report *Report, color bool) string {
	rows := make([][]string, 0, len(report.Entries)+1)
	for _, e := range report.Entries {
		rows = append(rows, tableRow(e))
	}

	if len(report.Entries) > 1 {
		rows = append(rows, tableRow(report.Total))
	}

	totalRow := -1
	if len(report.Entries) > 1 {
		totalRow = len(rows) - 1
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case color && col == len(tableHeaders)-1:
				return savingsStyle(rows[row][col])
			case row == totalRow:
				return totalStyle
			default:
				return cellStyle
			}
		})

	if color {
		t = t.BorderStyle(borderStyle)
	}

	return t.Render()
}

func tableRow(e Entry) []string {
	return []string{
		e.Source,
		strconv.Itoa(e.JSONBytes),
		strconv.Itoa(e.TOONBytes),
		strconv.Itoa(e.TOONLines),
		strconv.Itoa(e.JSONTokens),
		strconv.Itoa(e.TOONTokens),
		strconv.FormatFloat(e.Savings, 'f', 1, 64) + "%",
	}
}

func savingsStyle(cell string) lipgloss.Style {
	if strings.HasPrefix(cell, "-") {
		return cellStyle.Inherit(lossStyle)
	}

	return cellStyle.Inherit(gainStyle)
}

package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/contribplot/internal/model"
)

// FormatTable aligns rows into padded columns. Columns listed in rightAlign
// are right aligned.
func FormatTable(headers []string, rows [][]string, rightAlign map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			if i >= len(row) {
				continue
			}
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlign))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlign))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlign map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlign[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

// ContributionRows returns variable/value rows for a contribution set in the
// given column order.
func ContributionRows(set model.Set, columns []string) [][]string {
	values := set.Map()
	rows := make([][]string, 0, set.Len())
	for _, v := range arrange(set.Variables(), columns) {
		rows = append(rows, []string{v, formatValue(values[v], set.Percent)})
	}
	return rows
}

// WriteContributions writes a contribution set as an aligned table.
func WriteContributions(w io.Writer, set model.Set, columns []string) error {
	header := "Contribution"
	if set.Percent {
		header = AxisLabel
	}
	lines := FormatTable([]string{"Variable", header}, ContributionRows(set, columns), map[int]bool{1: true})
	return writeLines(w, lines)
}

// SummaryHeaders are the column titles of a summary table.
var SummaryHeaders = []string{"Variable", "Coef", "Sum", "Mean", "Std", "Contribution", "Share"}

// SummaryRows formats per-variable summaries.
func SummaryRows(summaries []model.VariableSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Variable,
			formatNumber(s.Coefficient),
			formatNumber(s.Sum),
			formatNumber(s.Mean),
			formatNumber(s.StdDev),
			formatNumber(s.Raw),
			formatValue(s.Percent, true),
		})
	}
	return rows
}

// WriteSummary writes per-variable summaries as an aligned table.
func WriteSummary(w io.Writer, summaries []model.VariableSummary) error {
	right := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	return writeLines(w, FormatTable(SummaryHeaders, SummaryRows(summaries), right))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

func formatValue(v float64, percent bool) string {
	if !percent {
		return fmt.Sprintf("%.4f", v)
	}
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v)
}

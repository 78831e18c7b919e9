package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/contribplot/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for files that are not CSV, TSV or XLSX.
	ErrUnsupportedFormat = errors.New("unsupported data format")
	// ErrNoRows is returned when a file has a header but no data rows.
	ErrNoRows = errors.New("file must have a header row and at least one data row")
	// ErrInvalidCell is returned when a cell is blank or not a number.
	ErrInvalidCell = errors.New("invalid cell")
)

// Load reads a table from a CSV, TSV or XLSX file chosen by extension.
func Load(path string) (model.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadDelimited(path, ',')
	case ".tsv":
		return LoadDelimited(path, '\t')
	case ".xlsx":
		return LoadXLSX(path, "")
	default:
		return model.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// LoadDelimited reads a header row followed by numeric rows.
func LoadDelimited(path string, comma rune) (model.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Table{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only data file.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("rows", len(rows)).Msg("read delimited file")
	return FromRows(rows)
}

// LoadXLSX reads a sheet of an Excel workbook. An empty sheet name selects the first sheet.
func LoadXLSX(path, sheet string) (model.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return model.Table{}, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	log.Debug().Str("path", path).Str("sheet", sheet).Int("rows", len(rows)).Msg("read workbook")
	return FromRows(rows)
}

// FromRows converts a header row plus string data rows into a table.
func FromRows(rows [][]string) (model.Table, error) {
	if len(rows) < 2 {
		return model.Table{}, ErrNoRows
	}
	headers := lo.Map(rows[0], func(h string, _ int) string {
		return strings.TrimSpace(h)
	})
	columns := make([]model.Column, len(headers))
	for i, h := range headers {
		columns[i] = model.Column{Name: h, Values: make([]float64, 0, len(rows)-1)}
	}
	for r, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		for c := range headers {
			cell := ""
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				// Row numbers are 1-based and count the header.
				return model.Table{}, fmt.Errorf("%w: row %d column %q: %q", ErrInvalidCell, r+2, headers[c], cell)
			}
			columns[c].Values = append(columns[c].Values, v)
		}
	}
	if len(columns) > 0 && len(columns[0].Values) == 0 {
		return model.Table{}, ErrNoRows
	}
	return NewTable(columns...)
}

func isBlankRow(row []string) bool {
	return lo.EveryBy(row, func(cell string) bool {
		return strings.TrimSpace(cell) == ""
	})
}

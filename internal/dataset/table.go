// Package dataset builds and loads numeric tables.
package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/contribplot/internal/model"
)

var (
	// ErrEmptyColumnName is returned for a column without a name.
	ErrEmptyColumnName = errors.New("empty column name")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrRaggedColumns is returned when columns differ in length.
	ErrRaggedColumns = errors.New("columns have different lengths")
	// ErrUnknownColumn is returned when selecting a column the table lacks.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoColumns is returned for a table without columns.
	ErrNoColumns = errors.New("table has no columns")
)

// NewTable validates columns and returns a table that owns copies of them.
func NewTable(columns ...model.Column) (model.Table, error) {
	if len(columns) == 0 {
		return model.Table{}, ErrNoColumns
	}
	seen := make(map[string]struct{}, len(columns))
	rows := len(columns[0].Values)
	out := make([]model.Column, 0, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return model.Table{}, fmt.Errorf("column %d: %w", i+1, ErrEmptyColumnName)
		}
		if _, ok := seen[name]; ok {
			return model.Table{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		if len(c.Values) != rows {
			return model.Table{}, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, name, len(c.Values), rows)
		}
		values := make([]float64, len(c.Values))
		copy(values, c.Values)
		out = append(out, model.Column{Name: name, Values: values})
	}
	return model.Table{Columns: out}, nil
}

// Select returns a table with only the named columns, in the given order.
func Select(t model.Table, names ...string) (model.Table, error) {
	if len(names) == 0 {
		return t, nil
	}
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return model.Table{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, dups[0])
	}
	cols := make([]model.Column, 0, len(names))
	for _, name := range names {
		values, ok := t.Column(name)
		if !ok {
			return model.Table{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownColumn, name, strings.Join(t.ColumnNames(), ", "))
		}
		cols = append(cols, model.Column{Name: name, Values: values})
	}
	return NewTable(cols...)
}

// ParseColumnList splits a comma-separated column list.
func ParseColumnList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Package model defines shared data structures.
package model

// Column is a named sequence of observations.
type Column struct {
	Name   string
	Values []float64
}

// Table is an ordered set of equal-length numeric columns.
// Use dataset.NewTable to build one; it checks names and column lengths.
type Table struct {
	Columns []Column
}

// ColumnNames returns the column names in table order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the values of the named column.
func (t Table) Column(name string) ([]float64, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Rows returns the number of rows in the table.
func (t Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ModelSpec is a named coefficient set.
type ModelSpec struct {
	Name         string
	Coefficients Coefficients
}

// VariableSummary describes one variable of a model.
type VariableSummary struct {
	Variable    string
	Coefficient float64
	Sum         float64
	Mean        float64
	StdDev      float64
	Raw         float64
	Percent     float64
}

// ChartConfig defines chart output settings.
type ChartConfig struct {
	Label  string
	Format string
	Width  int
	Height int
	Color  bool
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/contribplot/internal/model"
)

func TestNewTableValidates(t *testing.T) {
	_, err := NewTable()
	require.ErrorIs(t, err, ErrNoColumns)

	_, err = NewTable(model.Column{Name: " ", Values: []float64{1}})
	require.ErrorIs(t, err, ErrEmptyColumnName)

	_, err = NewTable(
		model.Column{Name: "A", Values: []float64{1}},
		model.Column{Name: "A", Values: []float64{2}},
	)
	require.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewTable(
		model.Column{Name: "A", Values: []float64{1, 2}},
		model.Column{Name: "B", Values: []float64{2}},
	)
	require.ErrorIs(t, err, ErrRaggedColumns)
}

func TestNewTableCopiesValues(t *testing.T) {
	values := []float64{1, 2, 3}
	tbl, err := NewTable(model.Column{Name: "A", Values: values})
	require.NoError(t, err)
	values[0] = 100

	got, ok := tbl.Column("A")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, got)
	assert.Equal(t, 3, tbl.Rows())
}

func TestSelectKeepsRequestedOrder(t *testing.T) {
	tbl, err := NewTable(
		model.Column{Name: "A", Values: []float64{1}},
		model.Column{Name: "B", Values: []float64{2}},
		model.Column{Name: "C", Values: []float64{3}},
	)
	require.NoError(t, err)

	sub, err := Select(tbl, "C", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, sub.ColumnNames())

	_, err = Select(tbl, "A", "Z")
	require.ErrorIs(t, err, ErrUnknownColumn)

	_, err = Select(tbl, "A", "A")
	require.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestParseColumnList(t *testing.T) {
	assert.Equal(t, []string{"tv", "radio"}, ParseColumnList(" tv, ,radio "))
	assert.Empty(t, ParseColumnList(""))
}

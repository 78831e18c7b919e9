package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "data.csv", "A, B\n1,4\n2,5\n\n3,6\n")
	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.ColumnNames())
	b, ok := tbl.Column("B")
	require.True(t, ok)
	assert.Equal(t, []float64{4, 5, 6}, b)
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "data.tsv", "A\tB\n1.5\t-2\n")
	tbl, err := Load(path)
	require.NoError(t, err)
	a, _ := tbl.Column("A")
	assert.Equal(t, []float64{1.5}, a)
}

func TestLoadRejectsBadCells(t *testing.T) {
	path := writeFile(t, "data.csv", "A,B\n1,x\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidCell)
	assert.Contains(t, err.Error(), `row 2 column "B"`)

	path = writeFile(t, "blank.csv", "A,B\n1,\n")
	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalidCell)
}

func TestLoadRequiresDataRows(t *testing.T) {
	path := writeFile(t, "header.csv", "A,B\n")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrNoRows)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("data.parquet")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	cells := map[string]any{
		"A1": "A", "B1": "B",
		"A2": 1, "B2": 4,
		"A3": 2, "B3": 5,
		"A4": 3, "B4": 6,
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.ColumnNames())
	a, _ := tbl.Column("A")
	assert.Equal(t, []float64{1, 2, 3}, a)
	assert.Equal(t, 3, tbl.Rows())
}

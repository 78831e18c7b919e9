package contrib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/contribplot/internal/model"
)

func TestSummarize(t *testing.T) {
	summaries, err := Summarize(sampleTable(t), model.Positional(2, 1))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	a := summaries[0]
	assert.Equal(t, "A", a.Variable)
	assert.Equal(t, 2.0, a.Coefficient)
	assert.Equal(t, 6.0, a.Sum)
	assert.Equal(t, 2.0, a.Mean)
	assert.InDelta(t, math.Sqrt(2.0/3.0), a.StdDev, 1e-9)
	assert.Equal(t, 12.0, a.Raw)
	assert.InDelta(t, 44.444, a.Percent, 0.001)
}

func TestSummarizeZeroTotal(t *testing.T) {
	summaries, err := Summarize(sampleTable(t), model.Positional(0, 0))
	require.NoError(t, err)
	for _, s := range summaries {
		assert.True(t, math.IsNaN(s.Percent))
	}
}

func TestSummarizeOverflowingTotal(t *testing.T) {
	tbl := model.Table{Columns: []model.Column{
		{Name: "A", Values: []float64{1e308}},
		{Name: "B", Values: []float64{1e308}},
	}}
	_, err := Summarize(tbl, model.Positional(1, 1))
	require.ErrorIs(t, err, ErrNonFinite)
}

package contrib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/contribplot/internal/dataset"
	"github.com/verte-zerg/contribplot/internal/model"
)

func sampleTable(t *testing.T) model.Table {
	t.Helper()
	tbl, err := dataset.NewTable(
		model.Column{Name: "A", Values: []float64{1, 2, 3}},
		model.Column{Name: "B", Values: []float64{4, 5, 6}},
	)
	require.NoError(t, err)
	return tbl
}

func TestComputeRawContributions(t *testing.T) {
	set, err := Compute(sampleTable(t), model.Named(map[string]float64{"A": 2, "B": 1}))
	require.NoError(t, err)

	assert.False(t, set.Percent)
	assert.Equal(t, []string{"A", "B"}, set.Variables())
	assert.Equal(t, map[string]float64{"A": 12, "B": 15}, set.Map())
}

func TestComputeSubsetKeepsCoefficientKeys(t *testing.T) {
	set, err := Compute(sampleTable(t), model.Named(map[string]float64{"B": 3}))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"B": 45}, set.Map())
}

func TestPositionalMatchesNamed(t *testing.T) {
	tbl := sampleTable(t)
	named, err := Compute(tbl, model.Named(map[string]float64{"A": 2, "B": 1}))
	require.NoError(t, err)
	positional, err := Compute(tbl, model.Positional(2, 1))
	require.NoError(t, err)
	assert.Equal(t, named.Entries(), positional.Entries())

	namedPct, err := Percentages(tbl, model.Named(map[string]float64{"A": 2, "B": 1}))
	require.NoError(t, err)
	positionalPct, err := Percentages(tbl, model.Positional(2, 1))
	require.NoError(t, err)
	assert.Equal(t, namedPct.Entries(), positionalPct.Entries())
}

func TestPercentagesScenario(t *testing.T) {
	set, err := Percentages(sampleTable(t), model.Named(map[string]float64{"A": 2, "B": 1}))
	require.NoError(t, err)
	require.True(t, set.Percent)

	a, _ := set.Get("A")
	b, _ := set.Get("B")
	assert.InDelta(t, 44.444, a, 0.001)
	assert.InDelta(t, 55.556, b, 0.001)
	assert.InDelta(t, 100, a+b, 1e-9)
}

func TestPercentagesSumToHundredWithNegatives(t *testing.T) {
	tbl, err := dataset.NewTable(
		model.Column{Name: "tv", Values: []float64{10, 20, 30}},
		model.Column{Name: "radio", Values: []float64{1, 1, 1}},
		model.Column{Name: "price", Values: []float64{5, 5, 5}},
	)
	require.NoError(t, err)
	set, err := Percentages(tbl, model.Positional(0.5, 3, -0.4))
	require.NoError(t, err)
	assert.InDelta(t, 100, Total(set), 1e-9)
	price, _ := set.Get("price")
	assert.Less(t, price, 0.0)
}

func TestUnknownVariableFails(t *testing.T) {
	_, err := Compute(sampleTable(t), model.Named(map[string]float64{"A": 2, "C": 1}))
	require.ErrorIs(t, err, ErrUnknownVariable)
	assert.Contains(t, err.Error(), `"C"`)

	_, err = Percentages(sampleTable(t), model.Named(map[string]float64{"C": 1}))
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestLengthMismatchFails(t *testing.T) {
	_, err := Compute(sampleTable(t), model.Positional(2))
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Compute(sampleTable(t), model.Positional(2, 1, 3))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEmptyCoefficientsFail(t *testing.T) {
	_, err := Compute(sampleTable(t), model.Coefficients{})
	require.ErrorIs(t, err, ErrNoCoefficients)

	_, err = Compute(sampleTable(t), model.Named(nil))
	require.ErrorIs(t, err, ErrNoCoefficients)
}

func TestZeroTotalFails(t *testing.T) {
	_, err := Percentages(sampleTable(t), model.Named(map[string]float64{"A": 5, "B": -2}))
	require.ErrorIs(t, err, ErrZeroTotal)

	_, err = Percentages(sampleTable(t), model.Positional(0, 0))
	require.ErrorIs(t, err, ErrZeroTotal)
}

func TestNonFiniteFails(t *testing.T) {
	_, err := Compute(sampleTable(t), model.Positional(math.Inf(1), 1))
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestOverflowingTotalFails(t *testing.T) {
	tbl, err := dataset.NewTable(
		model.Column{Name: "A", Values: []float64{1e308}},
		model.Column{Name: "B", Values: []float64{1e308}},
	)
	require.NoError(t, err)

	raw, err := Compute(tbl, model.Positional(1, 1))
	require.NoError(t, err)
	assert.True(t, math.IsInf(Total(raw), 1))

	_, err = Percentages(tbl, model.Positional(1, 1))
	require.ErrorIs(t, err, ErrNonFinite)

	_, err = ToPercentages(model.NewSet(false, []model.Contribution{
		{Variable: "A", Value: -1e308},
		{Variable: "B", Value: -1e308},
	}))
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestIdempotentAndInputsUntouched(t *testing.T) {
	tbl := sampleTable(t)
	weights := map[string]float64{"A": 2, "B": 1}
	coefs := model.Named(weights)

	first, err := Percentages(tbl, coefs)
	require.NoError(t, err)
	second, err := Percentages(tbl, coefs)
	require.NoError(t, err)
	assert.Equal(t, first.Entries(), second.Entries())

	a, _ := tbl.Column("A")
	assert.Equal(t, []float64{1, 2, 3}, a)
	assert.Equal(t, map[string]float64{"A": 2, "B": 1}, weights)
}

func TestToPercentagesLeavesPercentSetsAlone(t *testing.T) {
	pct := model.NewSet(true, []model.Contribution{{Variable: "A", Value: 100}})
	got, err := ToPercentages(pct)
	require.NoError(t, err)
	assert.Equal(t, pct.Entries(), got.Entries())
}

func TestCompareModels(t *testing.T) {
	specs := []model.ModelSpec{
		{Name: "OLS", Coefficients: model.Positional(2, 1)},
		{Name: "Ridge", Coefficients: model.Named(map[string]float64{"A": 1, "B": 1})},
	}
	coll, err := CompareModels(sampleTable(t), specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"OLS", "Ridge"}, coll.ModelNames())

	ridge, ok := coll.Set("Ridge")
	require.True(t, ok)
	a, _ := ridge.Get("A")
	assert.InDelta(t, 6.0/21*100, a, 1e-9)

	specs = append(specs, model.ModelSpec{Name: "OLS", Coefficients: model.Positional(1, 1)})
	_, err = CompareModels(sampleTable(t), specs)
	require.ErrorIs(t, err, ErrDuplicateModel)
}

func TestCompareModelsWrapsModelErrors(t *testing.T) {
	_, err := CompareModels(sampleTable(t), []model.ModelSpec{
		{Name: "bad", Coefficients: model.Named(map[string]float64{"C": 1})},
	})
	require.ErrorIs(t, err, ErrUnknownVariable)
	assert.Contains(t, err.Error(), `model "bad"`)
}

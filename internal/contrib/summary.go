package contrib

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/contribplot/internal/model"
)

// Summarize describes each variable of a model. Percent is NaN when the
// total contribution is zero.
func Summarize(table model.Table, coefs model.Coefficients) ([]model.VariableSummary, error) {
	weights, err := Resolve(table, coefs)
	if err != nil {
		return nil, err
	}
	raw, err := Compute(table, coefs)
	if err != nil {
		return nil, err
	}
	total := Total(raw)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total", ErrNonFinite)
	}

	out := make([]model.VariableSummary, 0, len(weights))
	for _, w := range weights {
		values, _ := table.Column(w.Variable)
		contribution, _ := raw.Get(w.Variable)
		summary := model.VariableSummary{
			Variable:    w.Variable,
			Coefficient: w.Value,
			Sum:         floats.Sum(values),
			Raw:         contribution,
			Percent:     math.NaN(),
		}
		if len(values) > 0 {
			if mean, err := stats.Mean(values); err == nil {
				summary.Mean = mean
			}
			if sd, err := stats.StandardDeviation(values); err == nil {
				summary.StdDev = sd
			}
		}
		if total != 0 {
			summary.Percent = contribution / total * 100
		}
		out = append(out, summary)
	}
	return out, nil
}

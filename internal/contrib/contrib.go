// Package contrib computes how much each variable of a linear model
// contributes to the model's aggregate output.
//
// A contribution is the variable's coefficient multiplied by the sum of the
// variable's observed values. Percentages rescale the contributions of one
// model so they sum to 100.
package contrib

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/contribplot/internal/model"
)

var (
	// ErrUnknownVariable is returned when a coefficient names a missing column.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrLengthMismatch is returned when positional coefficients do not line up with the columns.
	ErrLengthMismatch = errors.New("coefficient count does not match column count")
	// ErrZeroTotal is returned when percentages are requested for a zero total.
	ErrZeroTotal = errors.New("total contribution is zero")
	// ErrNonFinite is returned when a contribution is NaN or infinite.
	ErrNonFinite = errors.New("non-finite contribution")
	// ErrNoCoefficients is returned for empty or unset coefficients.
	ErrNoCoefficients = errors.New("no coefficients")
	// ErrDuplicateModel is returned when two models share a name.
	ErrDuplicateModel = errors.New("duplicate model")
)

// Weight is a resolved coefficient.
type Weight struct {
	Variable string
	Value    float64
}

// Resolve pairs coefficients with table columns and returns them in column order.
func Resolve(table model.Table, coefs model.Coefficients) ([]Weight, error) {
	columns := table.ColumnNames()
	switch coefs.Form() {
	case model.FormPositional:
		values := coefs.Values()
		if len(values) == 0 {
			return nil, ErrNoCoefficients
		}
		if len(values) != len(columns) {
			return nil, fmt.Errorf("%w: %d coefficients for %d columns", ErrLengthMismatch, len(values), len(columns))
		}
		out := make([]Weight, len(values))
		for i, v := range values {
			out[i] = Weight{Variable: columns[i], Value: v}
		}
		return out, nil
	case model.FormNamed:
		weights := coefs.Weights()
		if len(weights) == 0 {
			return nil, ErrNoCoefficients
		}
		for _, name := range coefs.Names() {
			if _, ok := table.Column(name); !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
			}
		}
		out := make([]Weight, 0, len(weights))
		for _, name := range columns {
			if v, ok := weights[name]; ok {
				out = append(out, Weight{Variable: name, Value: v})
			}
		}
		return out, nil
	default:
		return nil, ErrNoCoefficients
	}
}

// Compute returns the raw contribution of every coefficient's variable.
func Compute(table model.Table, coefs model.Coefficients) (model.Set, error) {
	weights, err := Resolve(table, coefs)
	if err != nil {
		return model.Set{}, err
	}
	entries := make([]model.Contribution, 0, len(weights))
	for _, w := range weights {
		values, _ := table.Column(w.Variable)
		v := w.Value * floats.Sum(values)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Set{}, fmt.Errorf("%w: %q", ErrNonFinite, w.Variable)
		}
		entries = append(entries, model.Contribution{Variable: w.Variable, Value: v})
	}
	return model.NewSet(false, entries), nil
}

// Percentages returns contributions rescaled to sum to 100.
func Percentages(table model.Table, coefs model.Coefficients) (model.Set, error) {
	raw, err := Compute(table, coefs)
	if err != nil {
		return model.Set{}, err
	}
	return ToPercentages(raw)
}

// ToPercentages rescales a raw set so its values sum to 100.
func ToPercentages(raw model.Set) (model.Set, error) {
	if raw.Percent {
		return raw, nil
	}
	total := Total(raw)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return model.Set{}, fmt.Errorf("%w: total", ErrNonFinite)
	}
	if total == 0 {
		return model.Set{}, ErrZeroTotal
	}
	entries := raw.Entries()
	for i := range entries {
		v := entries[i].Value / total * 100
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.Set{}, fmt.Errorf("%w: %q", ErrNonFinite, entries[i].Variable)
		}
		entries[i].Value = v
	}
	return model.NewSet(true, entries), nil
}

// Total sums the values of a set.
func Total(s model.Set) float64 {
	entries := s.Entries()
	values := make([]float64, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return floats.Sum(values)
}

// CompareModels computes percentage contributions for each model, keeping model order.
func CompareModels(table model.Table, specs []model.ModelSpec) (model.Collection, error) {
	seen := make(map[string]struct{}, len(specs))
	out := model.Collection{Models: make([]model.ModelSet, 0, len(specs))}
	for _, spec := range specs {
		if _, ok := seen[spec.Name]; ok {
			return model.Collection{}, fmt.Errorf("%w: %q", ErrDuplicateModel, spec.Name)
		}
		seen[spec.Name] = struct{}{}
		set, err := Percentages(table, spec.Coefficients)
		if err != nil {
			return model.Collection{}, fmt.Errorf("model %q: %w", spec.Name, err)
		}
		out.Models = append(out.Models, model.ModelSet{Model: spec.Name, Set: set})
	}
	return out, nil
}

package model

import "sort"

// CoefficientForm tells how coefficients were supplied.
type CoefficientForm int

const (
	// FormPositional pairs values with table columns by position.
	FormPositional CoefficientForm = iota + 1
	// FormNamed maps variable names to values.
	FormNamed
)

func (f CoefficientForm) String() string {
	switch f {
	case FormPositional:
		return "positional"
	case FormNamed:
		return "named"
	default:
		return "unset"
	}
}

// Coefficients holds model weights in either positional or named form.
// The zero value has no form and resolves to nothing.
type Coefficients struct {
	form       CoefficientForm
	positional []float64
	named      map[string]float64
}

// Positional builds coefficients aligned to table column order.
func Positional(values ...float64) Coefficients {
	out := make([]float64, len(values))
	copy(out, values)
	return Coefficients{form: FormPositional, positional: out}
}

// Named builds coefficients keyed by variable name.
func Named(weights map[string]float64) Coefficients {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return Coefficients{form: FormNamed, named: out}
}

// Form reports how the coefficients were supplied.
func (c Coefficients) Form() CoefficientForm {
	return c.form
}

// Len returns the number of coefficients.
func (c Coefficients) Len() int {
	if c.form == FormNamed {
		return len(c.named)
	}
	return len(c.positional)
}

// Values returns a copy of the positional values. It is nil for named coefficients.
func (c Coefficients) Values() []float64 {
	if c.form != FormPositional {
		return nil
	}
	out := make([]float64, len(c.positional))
	copy(out, c.positional)
	return out
}

// Weights returns a copy of the named weights. It is nil for positional coefficients.
func (c Coefficients) Weights() map[string]float64 {
	if c.form != FormNamed {
		return nil
	}
	out := make(map[string]float64, len(c.named))
	for k, v := range c.named {
		out[k] = v
	}
	return out
}

// Names returns the named variables sorted alphabetically.
func (c Coefficients) Names() []string {
	names := make([]string, 0, len(c.named))
	for k := range c.named {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

package model

// Contribution is one variable's contribution value.
type Contribution struct {
	Variable string
	Value    float64
}

// Set is an ordered set of contributions. Percent is true when the values
// were rescaled to sum to 100.
type Set struct {
	Percent bool
	entries []Contribution
}

// NewSet copies entries into a new Set.
func NewSet(percent bool, entries []Contribution) Set {
	out := make([]Contribution, len(entries))
	copy(out, entries)
	return Set{Percent: percent, entries: out}
}

// Entries returns a copy of the contributions in order.
func (s Set) Entries() []Contribution {
	out := make([]Contribution, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of contributions.
func (s Set) Len() int {
	return len(s.entries)
}

// Get returns the contribution of a variable.
func (s Set) Get(variable string) (float64, bool) {
	for _, e := range s.entries {
		if e.Variable == variable {
			return e.Value, true
		}
	}
	return 0, false
}

// Variables returns variable names in order.
func (s Set) Variables() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Variable
	}
	return out
}

// Map returns the contributions keyed by variable.
func (s Set) Map() map[string]float64 {
	out := make(map[string]float64, len(s.entries))
	for _, e := range s.entries {
		out[e.Variable] = e.Value
	}
	return out
}

// ModelSet pairs a model name with its percentage contributions.
type ModelSet struct {
	Model string
	Set   Set
}

// Collection holds contribution sets for several models in display order.
type Collection struct {
	Models []ModelSet
}

// ModelNames returns model names in order.
func (c Collection) ModelNames() []string {
	out := make([]string, len(c.Models))
	for i, m := range c.Models {
		out[i] = m.Model
	}
	return out
}

// Set returns the contributions of the named model.
func (c Collection) Set(name string) (Set, bool) {
	for _, m := range c.Models {
		if m.Model == name {
			return m.Set, true
		}
	}
	return Set{}, false
}

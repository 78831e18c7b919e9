// Package modelfile reads and writes coefficient sets.
//
// A model file is TOML with one [[model]] table per model. Each model sets
// either a positional "coefficients" array or a named "weights" table:
//
//	[[model]]
//	name = "OLS"
//	coefficients = [2.0, 1.0]
//
//	[[model]]
//	name = "Ridge"
//	[model.weights]
//	A = 1.8
//	B = 1.1
package modelfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/contribplot/internal/model"
)

var (
	// ErrInvalidModel is returned for a model without a name or without exactly one coefficient form.
	ErrInvalidModel = errors.New("invalid model")
	// ErrModelNotFound is returned when a named model is not in the file.
	ErrModelNotFound = errors.New("model not found")
	// ErrMixedForms is returned for inline coefficients mixing values and name=value pairs.
	ErrMixedForms = errors.New("coefficients mix positional and named values")
	// ErrEmptyCoefficients is returned for an empty inline spec.
	ErrEmptyCoefficients = errors.New("coefficients are empty")
	// ErrEmptyField is returned for a blank entry between commas, such as "2,,1".
	ErrEmptyField = errors.New("empty coefficient field")
)

type fileModel struct {
	Name         string             `toml:"name"`
	Coefficients []float64          `toml:"coefficients,omitempty"`
	Weights      map[string]float64 `toml:"weights,omitempty"`
}

type document struct {
	Models []fileModel `toml:"model"`
}

// Load reads all models from a TOML file.
func Load(path string) ([]model.ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	specs, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Parse decodes models from TOML text.
func Parse(data string) ([]model.ModelSpec, error) {
	var doc document
	if _, err := toml.Decode(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode models: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Models))
	specs := make([]model.ModelSpec, 0, len(doc.Models))
	for i, m := range doc.Models {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: model %d has no name", ErrInvalidModel, i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: duplicate model %q", ErrInvalidModel, name)
		}
		seen[name] = struct{}{}
		hasPositional, hasNamed := len(m.Coefficients) > 0, len(m.Weights) > 0
		switch {
		case hasPositional && hasNamed:
			return nil, fmt.Errorf("%w: model %q sets both coefficients and weights", ErrInvalidModel, name)
		case hasPositional:
			specs = append(specs, model.ModelSpec{Name: name, Coefficients: model.Positional(m.Coefficients...)})
		case hasNamed:
			specs = append(specs, model.ModelSpec{Name: name, Coefficients: model.Named(m.Weights)})
		default:
			return nil, fmt.Errorf("%w: model %q has no coefficients or weights", ErrInvalidModel, name)
		}
	}
	return specs, nil
}

// Write encodes models as TOML.
func Write(w io.Writer, specs []model.ModelSpec) error {
	doc := document{Models: make([]fileModel, 0, len(specs))}
	for _, s := range specs {
		doc.Models = append(doc.Models, fileModel{
			Name:         s.Name,
			Coefficients: s.Coefficients.Values(),
			Weights:      s.Coefficients.Weights(),
		})
	}
	return toml.NewEncoder(w).Encode(doc)
}

// Select returns the named models in the requested order. No names selects all.
func Select(specs []model.ModelSpec, names ...string) ([]model.ModelSpec, error) {
	if len(names) == 0 {
		return specs, nil
	}
	out := make([]model.ModelSpec, 0, len(names))
	for _, name := range names {
		found := false
		for _, s := range specs {
			if s.Name == name {
				out = append(out, s)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
		}
	}
	return out, nil
}

// ParseInline parses "2,1" as positional or "A=2,B=1" as named coefficients.
func ParseInline(input string) (model.Coefficients, error) {
	if strings.TrimSpace(input) == "" {
		return model.Coefficients{}, ErrEmptyCoefficients
	}
	parts := strings.Split(input, ",")
	var values []float64
	weights := map[string]float64{}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return model.Coefficients{}, fmt.Errorf("%w: position %d", ErrEmptyField, i+1)
		}
		name, raw, named := strings.Cut(part, "=")
		if named {
			name = strings.TrimSpace(name)
			if name == "" {
				return model.Coefficients{}, fmt.Errorf("missing variable name in %q", part)
			}
			if _, ok := weights[name]; ok {
				return model.Coefficients{}, fmt.Errorf("duplicate variable %q", name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return model.Coefficients{}, fmt.Errorf("invalid coefficient for %q: %w", name, err)
			}
			weights[name] = v
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return model.Coefficients{}, fmt.Errorf("invalid coefficient %q: %w", part, err)
		}
		values = append(values, v)
	}
	switch {
	case len(values) > 0 && len(weights) > 0:
		return model.Coefficients{}, ErrMixedForms
	case len(values) > 0:
		return model.Positional(values...), nil
	case len(weights) > 0:
		return model.Named(weights), nil
	default:
		return model.Coefficients{}, ErrEmptyCoefficients
	}
}

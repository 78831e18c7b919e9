package modelfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/contribplot/internal/model"
)

const sampleModels = `
[[model]]
name = "OLS"
coefficients = [2.0, 1.0]

[[model]]
name = "Ridge"
[model.weights]
A = 1.8
B = 1.1
`

func TestParseModels(t *testing.T) {
	specs, err := Parse(sampleModels)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "OLS", specs[0].Name)
	assert.Equal(t, model.FormPositional, specs[0].Coefficients.Form())
	assert.Equal(t, []float64{2, 1}, specs[0].Coefficients.Values())

	assert.Equal(t, "Ridge", specs[1].Name)
	assert.Equal(t, model.FormNamed, specs[1].Coefficients.Form())
	assert.Equal(t, map[string]float64{"A": 1.8, "B": 1.1}, specs[1].Coefficients.Weights())
}

func TestParseRejectsInvalidModels(t *testing.T) {
	cases := map[string]string{
		"no name":   "[[model]]\ncoefficients = [1.0]\n",
		"no values": "[[model]]\nname = \"m\"\n",
		"both": `[[model]]
name = "m"
coefficients = [1.0]
[model.weights]
A = 1.0
`,
		"duplicate": "[[model]]\nname = \"m\"\ncoefficients = [1.0]\n[[model]]\nname = \"m\"\ncoefficients = [2.0]\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			require.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestLoadAndWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleModels), 0o644))
	specs, err := Load(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, specs))
	again, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, specs, again)
}

func TestSelect(t *testing.T) {
	specs, err := Parse(sampleModels)
	require.NoError(t, err)

	got, err := Select(specs, "Ridge", "OLS")
	require.NoError(t, err)
	assert.Equal(t, "Ridge", got[0].Name)
	assert.Equal(t, "OLS", got[1].Name)

	all, err := Select(specs)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = Select(specs, "Lasso")
	require.ErrorIs(t, err, ErrModelNotFound)
}

func TestParseInline(t *testing.T) {
	coefs, err := ParseInline("2, 1.5,-3")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1.5, -3}, coefs.Values())

	coefs, err = ParseInline("A=2, B = 1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 2, "B": 1}, coefs.Weights())

	_, err = ParseInline("A=2,1")
	require.ErrorIs(t, err, ErrMixedForms)

	_, err = ParseInline("  ")
	require.ErrorIs(t, err, ErrEmptyCoefficients)

	_, err = ParseInline("A=x")
	require.Error(t, err)

	_, err = ParseInline("A=1,A=2")
	require.Error(t, err)
}

func TestParseInlineRejectsEmptyFields(t *testing.T) {
	for _, input := range []string{"2,,1", "2,1,", ",2,1", " , ", "A=2,,B=1"} {
		_, err := ParseInline(input)
		require.ErrorIs(t, err, ErrEmptyField, input)
	}
}

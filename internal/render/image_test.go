package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/contribplot/internal/model"
)

func sampleCollection() model.Collection {
	return model.Collection{Models: []model.ModelSet{
		{Model: "OLS", Set: pctSet(model.Contribution{Variable: "A", Value: 44.4}, model.Contribution{Variable: "B", Value: 55.6})},
		{Model: "Ridge", Set: pctSet(model.Contribution{Variable: "A", Value: 120}, model.Contribution{Variable: "B", Value: -20})},
	}}
}

func TestImageRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	err := RenderMultiModel(Image{Format: FormatPNG}, &buf, sampleCollection(), []string{"A", "B"}, "both")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestImageRenderSVG(t *testing.T) {
	set := pctSet(model.Contribution{Variable: "A", Value: 44.4}, model.Contribution{Variable: "B", Value: 55.6})
	var buf bytes.Buffer
	err := RenderSingleModel(Image{Format: FormatSVG, Width: 640, Height: 360}, &buf, set, []string{"A", "B"}, "OLS")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestImageUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Image{Format: "gif"}.Render(&buf, Chart{})
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatPNG, FormatForPath("out/chart.PNG"))
	assert.Equal(t, FormatSVG, FormatForPath("chart.svg"))
	assert.Equal(t, "", FormatForPath("chart.txt"))
}

func TestNiceStep(t *testing.T) {
	assert.Equal(t, 1.0, niceStep(0))
	assert.Equal(t, 20.0, niceStep(14))
	assert.Equal(t, 50.0, niceStep(30))
	assert.Equal(t, 0.5, niceStep(0.3))
}

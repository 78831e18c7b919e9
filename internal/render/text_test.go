package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/contribplot/internal/model"
)

func TestTextRenderSingleModel(t *testing.T) {
	set := pctSet(
		model.Contribution{Variable: "A", Value: 44.444},
		model.Contribution{Variable: "B", Value: 55.556},
	)
	var buf bytes.Buffer
	err := RenderSingleModel(Text{Width: 60}, &buf, set, []string{"A", "B"}, "OLS")
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Variable Contributions as % of Total Contributions (OLS)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "A │█"), "line %q", lines[1])
	assert.True(t, strings.HasSuffix(lines[1], " 44%"), "line %q", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "B │█"), "line %q", lines[2])
	assert.True(t, strings.HasSuffix(lines[2], " 56%"), "line %q", lines[2])
	assert.Greater(t, strings.Count(lines[2], "█"), strings.Count(lines[1], "█"))
	assert.Contains(t, out, "Contribution (%)")
	assert.NotContains(t, out, "Legend")
	for _, line := range lines {
		assert.LessOrEqual(t, len([]rune(line)), 60, "line %q too wide", line)
	}
}

func TestTextRenderNegativeBar(t *testing.T) {
	set := pctSet(
		model.Contribution{Variable: "tv", Value: 120},
		model.Contribution{Variable: "price", Value: -20},
	)
	var buf bytes.Buffer
	require.NoError(t, RenderSingleModel(Text{Width: 70}, &buf, set, []string{"tv", "price"}, "m"))

	lines := strings.Split(buf.String(), "\n")
	price := lines[2]
	assert.True(t, strings.HasPrefix(price, "price │"), "line %q", price)
	assert.Contains(t, price, "-20% █")
	assert.Contains(t, lines[1], "120%")
	assert.Contains(t, buf.String(), "┴")
}

func TestTextRenderMultiModel(t *testing.T) {
	coll := model.Collection{Models: []model.ModelSet{
		{Model: "OLS", Set: pctSet(model.Contribution{Variable: "A", Value: 40}, model.Contribution{Variable: "B", Value: 60})},
		{Model: "Ridge", Set: pctSet(model.Contribution{Variable: "A", Value: 50}, model.Contribution{Variable: "B", Value: 50})},
	}}
	var buf bytes.Buffer
	require.NoError(t, RenderMultiModel(Text{Width: 60}, &buf, coll, []string{"A", "B"}, "both"))

	out := buf.String()
	assert.Contains(t, out, "Contributions % (both)")
	assert.Contains(t, out, "Model: █ OLS  ▓ Ridge")
	assert.Contains(t, out, "▓")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "50%")
	assert.Less(t, strings.Index(out, "40%"), strings.Index(out, "60%"))
}

func TestTextRenderForcedColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	set := pctSet(model.Contribution{Variable: "A", Value: 100})
	var buf bytes.Buffer
	require.NoError(t, RenderSingleModel(Text{Width: 40, ForceColor: true}, &buf, set, nil, "m"))
	assert.Contains(t, buf.String(), colorPalette[0].code)
	assert.Contains(t, buf.String(), colorReset)
}

func TestTextRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSingleModel(Text{Width: 40}, &buf, model.Set{}, nil, "m"))
	assert.Contains(t, buf.String(), emptyChartMessage)
}

func TestFitLabelTruncatesWideLabels(t *testing.T) {
	assert.Equal(t, "abc ", fitLabel("abc", 4))
	got := fitLabel("advertising_spend", 6)
	assert.Equal(t, 6, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

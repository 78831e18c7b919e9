package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Image output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	defaultImageWidth = 1000
	imageBarHeight    = 26
	imageGroupGap     = 14
	imageTop          = 56
	imageBottom       = 70
	imageRight        = 40
	imageLegendWidth  = 150
	imageTickCount    = 5
	titleFontSize     = 13
	labelFontSize     = 10
)

// ErrUnknownFormat is returned for an image format other than png or svg.
var ErrUnknownFormat = errors.New("unknown image format")

var imagePalette = []drawing.Color{
	drawing.ColorFromHex("F08080"),
	drawing.ColorFromHex("4E79A7"),
	drawing.ColorFromHex("F28E2B"),
	drawing.ColorFromHex("59A14F"),
	drawing.ColorFromHex("B07AA1"),
	drawing.ColorFromHex("76B7B2"),
}

var (
	axisColor = drawing.ColorFromHex("4A4A4A")
	gridColor = drawing.ColorFromHex("E0E0E0")
	textColor = drawing.ColorFromHex("202020")
)

// Image draws charts as PNG or SVG images.
type Image struct {
	// Format is "png" or "svg".
	Format string
	// Width and Height in pixels. Zero picks a size that fits the bars.
	Width  int
	Height int
}

// FormatForPath returns the image format implied by a file name, or "" when
// the extension is not an image format.
func FormatForPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return FormatPNG
	case strings.HasSuffix(lower, ".svg"):
		return FormatSVG
	default:
		return ""
	}
}

type imageLayout struct {
	width, height  int
	left, right    int
	top, bottom    int
	minVal, maxVal float64
	barHeight      int
	legend         bool
}

func (l imageLayout) x(v float64) int {
	span := l.maxVal - l.minVal
	return l.left + int(math.Round((v-l.minVal)/span*float64(l.right-l.left)))
}

// Render implements Renderer.
func (img Image) Render(w io.Writer, c Chart) error {
	provider, err := rendererProvider(img.Format)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}

	l := img.layout(c)
	r, err := provider(l.width, l.height)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	labelStyle := chart.Style{Font: font, FontSize: labelFontSize, FontColor: textColor}
	titleStyle := chart.Style{Font: font, FontSize: titleFontSize, FontColor: textColor}

	chart.Draw.Box(r, chart.Box{Top: 0, Left: 0, Right: l.width, Bottom: l.height}, chart.Style{FillColor: drawing.ColorWhite})

	titleBox := chart.Draw.MeasureText(r, c.Title, titleStyle)
	chart.Draw.Text(r, c.Title, (l.width-titleBox.Width())/2, imageTop/2+titleBox.Height()/2, titleStyle)

	drawGrid(r, l, labelStyle)

	y := l.top
	for _, g := range c.Groups {
		groupHeight := max(1, len(g.Bars)) * l.barHeight
		labelBox := chart.Draw.MeasureText(r, g.Label, labelStyle)
		chart.Draw.Text(r, g.Label, l.left-labelBox.Width()-10, y+groupHeight/2+labelBox.Height()/2, labelStyle)
		for bi, b := range g.Bars {
			top := y + bi*l.barHeight + 2
			bottom := y + (bi+1)*l.barHeight - 2
			x0, x1 := l.x(math.Min(0, b.Value)), l.x(math.Max(0, b.Value))
			color := imagePalette[c.seriesIndex(b.Series)%len(imagePalette)]
			if x1 > x0 {
				chart.Draw.Box(r, chart.Box{Top: top, Left: x0, Right: x1, Bottom: bottom}, chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1})
			}
			text := valueLabel(b.Value)
			textBox := chart.Draw.MeasureText(r, text, labelStyle)
			tx := x1 + 4
			if b.Value < 0 {
				tx = x0 - textBox.Width() - 4
			}
			chart.Draw.Text(r, text, tx, (top+bottom)/2+textBox.Height()/2, labelStyle)
		}
		y += groupHeight + imageGroupGap
	}

	zero := l.x(0)
	drawLine(r, zero, l.top, zero, l.bottom, axisColor)
	drawLine(r, l.left, l.bottom, l.right, l.bottom, axisColor)

	if c.XLabel != "" {
		box := chart.Draw.MeasureText(r, c.XLabel, labelStyle)
		chart.Draw.Text(r, c.XLabel, (l.left+l.right-box.Width())/2, l.bottom+44, labelStyle)
	}
	if c.YLabel != "" {
		box := chart.Draw.MeasureText(r, c.YLabel, labelStyle)
		chart.Draw.Text(r, c.YLabel, l.left-box.Width()-10, l.top-10, labelStyle)
	}
	if l.legend {
		drawLegend(r, c, l, labelStyle)
	}
	return r.Save(w)
}

func rendererProvider(format string) (chart.RendererProvider, error) {
	switch strings.ToLower(format) {
	case FormatPNG, "":
		return chart.PNG, nil
	case FormatSVG:
		return chart.SVG, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (img Image) layout(c Chart) imageLayout {
	l := imageLayout{width: img.Width, height: img.Height, barHeight: imageBarHeight}
	if l.width <= 0 {
		l.width = defaultImageWidth
	}
	bars := 0
	for _, g := range c.Groups {
		bars += max(1, len(g.Bars))
	}
	plotHeight := bars*l.barHeight + len(c.Groups)*imageGroupGap
	if l.height <= 0 {
		l.height = imageTop + plotHeight + imageBottom
	} else if avail := l.height - imageTop - imageBottom; avail > 0 && plotHeight > 0 {
		l.barHeight = max(4, l.barHeight*avail/plotHeight)
	}
	l.legend = len(c.Series) > 1 || c.LegendTitle != ""

	longest := 0
	for _, g := range c.Groups {
		if n := len([]rune(g.Label)); n > longest {
			longest = n
		}
	}
	l.left = 30 + longest*7
	l.right = l.width - imageRight
	if l.legend {
		l.right -= imageLegendWidth
	}
	if l.right <= l.left {
		l.right = l.left + 1
	}
	l.top = imageTop
	l.bottom = l.height - imageBottom

	l.minVal, l.maxVal = c.valueRange()
	step := niceStep((l.maxVal - l.minVal) / imageTickCount)
	l.maxVal = math.Ceil(l.maxVal/step) * step
	l.minVal = math.Floor(l.minVal/step) * step
	if l.maxVal == l.minVal {
		l.maxVal = l.minVal + step
	}
	return l
}

func drawGrid(r chart.Renderer, l imageLayout, style chart.Style) {
	step := niceStep((l.maxVal - l.minVal) / imageTickCount)
	for v := l.minVal; v <= l.maxVal+step/2; v += step {
		x := l.x(v)
		drawLine(r, x, l.top, x, l.bottom, gridColor)
		label := fmt.Sprintf("%.0f", v)
		box := chart.Draw.MeasureText(r, label, style)
		chart.Draw.Text(r, label, x-box.Width()/2, l.bottom+18, style)
	}
}

func drawLegend(r chart.Renderer, c Chart, l imageLayout, style chart.Style) {
	x := l.right + 24
	y := l.top
	if c.LegendTitle != "" {
		chart.Draw.Text(r, c.LegendTitle, x, y+10, style)
		y += 20
	}
	for i, s := range c.Series {
		color := imagePalette[i%len(imagePalette)]
		chart.Draw.Box(r, chart.Box{Top: y, Left: x, Right: x + 12, Bottom: y + 12}, chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1})
		chart.Draw.Text(r, s, x+18, y+11, style)
		y += 20
	}
}

func drawLine(r chart.Renderer, x0, y0, x1, y1 int, color drawing.Color) {
	style := chart.Style{StrokeColor: color, StrokeWidth: 1}
	style.WriteDrawingOptionsToRenderer(r)
	defer r.ResetStyle()
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

// niceStep rounds a raw tick step to 1, 2, 5 or 10 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch frac := raw / base; {
	case frac <= 1:
		return base
	case frac <= 2:
		return 2 * base
	case frac <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}

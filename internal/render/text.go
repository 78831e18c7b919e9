package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type ansiColor struct {
	name string
	code string
}

const (
	minBarWidth         = 10
	terminalWidthBackup = 80
	axisSeparator       = " │"
	axisCorner          = " └"
	colorReset          = "\x1b[0m"
	emptyChartMessage   = "No contributions to plot."
)

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// Series without colour are told apart by their fill.
var fillRunes = []rune{'█', '▓', '▒', '░'}

// Eighth blocks for the fractional end of a solid bar.
var partialBlocks = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}

// Text draws charts with unicode block characters.
type Text struct {
	// Width is the total output width. Zero uses the terminal width.
	Width int
	// ForceColor enables ANSI colours even when the writer is not a terminal.
	ForceColor bool
}

// Render implements Renderer.
func (t Text) Render(w io.Writer, c Chart) error {
	if c.Title != "" {
		if _, err := fmt.Fprintln(w, c.Title); err != nil {
			return err
		}
	}
	if len(c.Groups) == 0 {
		_, err := fmt.Fprintln(w, emptyChartMessage)
		return err
	}
	for _, line := range t.lines(c, shouldUseColor(w, t.ForceColor)) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

type textLayout struct {
	labelWidth  int
	leftMargin  int
	area        int
	rightMargin int
	scale       float64
	zero        int
}

func (l textLayout) rowWidth() int {
	return l.leftMargin + l.area + l.rightMargin
}

func (t Text) layout(c Chart) textLayout {
	width := t.Width
	if width <= 0 {
		width = terminalWidth()
	}
	minVal, maxVal := c.valueRange()
	l := textLayout{labelWidth: labelColumnWidth(c, width)}
	if minVal < 0 {
		l.leftMargin = maxValueLabelWidth(c) + 1
	}
	l.rightMargin = maxValueLabelWidth(c) + 1
	l.area = width - l.labelWidth - runewidth.StringWidth(axisSeparator) - l.leftMargin - l.rightMargin
	if l.area < minBarWidth {
		l.area = minBarWidth
	}
	span := maxVal - minVal
	if span == 0 {
		span = 1
	}
	l.scale = float64(l.area) / span
	l.zero = l.leftMargin + int(math.Round(-minVal*l.scale))
	return l
}

func (t Text) lines(c Chart, useColor bool) []string {
	l := t.layout(c)
	blankLabel := strings.Repeat(" ", l.labelWidth)
	multi := len(c.Series) > 1

	var out []string
	if c.YLabel != "" {
		out = append(out, fitLabel(c.YLabel, l.labelWidth))
	}
	for gi, g := range c.Groups {
		if gi > 0 && multi {
			out = append(out, blankLabel+axisSeparator)
		}
		if len(g.Bars) == 0 {
			out = append(out, fitLabel(g.Label, l.labelWidth)+axisSeparator)
			continue
		}
		for bi, b := range g.Bars {
			label := blankLabel
			if bi == 0 {
				label = fitLabel(g.Label, l.labelWidth)
			}
			row := drawBar(b.Value, l, c.seriesIndex(b.Series), useColor)
			out = append(out, strings.TrimRight(label+axisSeparator+row, " "))
		}
	}
	out = append(out, blankLabel+axisCorner+axisLine(l))
	out = append(out, blankLabel+"  "+tickLine(c, l))
	if c.XLabel != "" {
		out = append(out, blankLabel+"  "+centerText(c.XLabel, l.rowWidth()))
	}
	if multi || c.LegendTitle != "" {
		out = append(out, renderLegend(c, useColor))
	}
	return out
}

func drawBar(v float64, l textLayout, seriesIdx int, useColor bool) string {
	width := l.rowWidth()
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
	}
	fill := fillRunes[seriesIdx%len(fillRunes)]
	label := []rune(valueLabel(v))

	barStart, barEnd := l.zero, l.zero
	labelStart := 0
	switch {
	case v > 0:
		eighths := int(math.Round(v * l.scale * 8))
		full, rem := eighths/8, eighths%8
		if fill != fillRunes[0] {
			full, rem = int(math.Round(v*l.scale)), 0
		}
		barEnd = l.zero + full
		for x := barStart; x < barEnd && x < width; x++ {
			cells[x] = fill
		}
		if rem > 0 && barEnd < width {
			cells[barEnd] = partialBlocks[rem]
			barEnd++
		}
		labelStart = barEnd + 1
	case v < 0:
		n := int(math.Round(-v * l.scale))
		barStart = l.zero - n
		if barStart < 0 {
			barStart = 0
		}
		for x := barStart; x < barEnd; x++ {
			cells[x] = fill
		}
		labelStart = barStart - 1 - len(label)
		if labelStart < 0 {
			labelStart = 0
		}
	default:
		labelStart = l.zero + 1
	}
	for i, r := range label {
		if x := labelStart + i; x >= 0 && x < width {
			cells[x] = r
		}
	}

	if !useColor || barStart == barEnd {
		return string(cells)
	}
	color := colorPalette[seriesIdx%len(colorPalette)].code
	if barEnd > width {
		barEnd = width
	}
	return string(cells[:barStart]) + color + string(cells[barStart:barEnd]) + colorReset + string(cells[barEnd:])
}

func axisLine(l textLayout) string {
	line := []rune(strings.Repeat("─", l.rowWidth()))
	if l.zero > 0 && l.zero < len(line) {
		line[l.zero] = '┴'
	}
	return string(line)
}

func tickLine(c Chart, l textLayout) string {
	width := l.rowWidth()
	cells := []rune(strings.Repeat(" ", width))
	place := func(text string, start int) {
		for i, r := range text {
			if x := start + i; x >= 0 && x < width {
				cells[x] = r
			}
		}
	}
	minVal, maxVal := c.valueRange()
	place("0", l.zero)
	if maxVal > 0 {
		label := fmt.Sprintf("%.0f", maxVal)
		place(label, l.zero+int(math.Round(maxVal*l.scale))-len(label)+1)
	}
	if minVal < 0 {
		place(fmt.Sprintf("%.0f", minVal), l.zero-int(math.Round(-minVal*l.scale)))
	}
	return strings.TrimRight(string(cells), " ")
}

func renderLegend(c Chart, useColor bool) string {
	parts := make([]string, 0, len(c.Series))
	for i, s := range c.Series {
		label := fmt.Sprintf("%c %s", fillRunes[i%len(fillRunes)], s)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	title := c.LegendTitle
	if title == "" {
		title = "Legend"
	}
	return title + ": " + strings.Join(parts, "  ")
}

func labelColumnWidth(c Chart, totalWidth int) int {
	width := runewidth.StringWidth(c.YLabel)
	for _, g := range c.Groups {
		if w := runewidth.StringWidth(g.Label); w > width {
			width = w
		}
	}
	if limit := totalWidth / 3; limit > 0 && width > limit {
		width = limit
	}
	if width < 1 {
		width = 1
	}
	return width
}

func maxValueLabelWidth(c Chart) int {
	width := 0
	for _, g := range c.Groups {
		for _, b := range g.Bars {
			if w := len(valueLabel(b.Value)); w > width {
				width = w
			}
		}
	}
	return width
}

func fitLabel(label string, width int) string {
	if runewidth.StringWidth(label) > width {
		label = runewidth.Truncate(label, width, "…")
	}
	return runewidth.FillRight(label, width)
}

func centerText(text string, width int) string {
	pad := (width - runewidth.StringWidth(text)) / 2
	if pad <= 0 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Package render draws contribution charts.
//
// Charts are first described by a backend-neutral [Chart] built from
// calculator output, then drawn by a [Renderer]: [Text] for terminals and
// [Image] for PNG or SVG files.
package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/contribplot/internal/model"
)

const (
	// AxisLabel is the value axis label used by every contribution chart.
	AxisLabel = "Contribution (%)"

	singleTitleFormat = "Variable Contributions as %% of Total Contributions (%s)"
	multiTitleFormat  = "Contributions %% (%s)"
)

// Bar is one series value inside a group.
type Bar struct {
	Series string
	Value  float64
}

// Group is one category on the vertical axis.
type Group struct {
	Label string
	Bars  []Bar
}

// Chart is a horizontal bar chart description. Groups are listed top to bottom.
type Chart struct {
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
	Series      []string
	Groups      []Group
}

// Renderer draws a chart to a writer.
type Renderer interface {
	Render(w io.Writer, c Chart) error
}

// SingleModel describes a chart with one bar per variable, ordered by columns.
func SingleModel(set model.Set, columns []string, label string) Chart {
	values := set.Map()
	groups := make([]Group, 0, len(values))
	for _, v := range arrange(set.Variables(), columns) {
		groups = append(groups, Group{
			Label: v,
			Bars:  []Bar{{Series: label, Value: values[v]}},
		})
	}
	return Chart{
		Title:  fmt.Sprintf(singleTitleFormat, label),
		XLabel: AxisLabel,
		Series: []string{label},
		Groups: groups,
	}
}

// MultiModel describes a grouped chart with one group per variable and one
// bar per model inside each group. A model without a variable has no bar there.
func MultiModel(coll model.Collection, columns []string, label string) Chart {
	var variables []string
	seen := map[string]struct{}{}
	for _, m := range coll.Models {
		for _, v := range m.Set.Variables() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			variables = append(variables, v)
		}
	}

	groups := make([]Group, 0, len(variables))
	for _, v := range arrange(variables, columns) {
		g := Group{Label: v}
		for _, m := range coll.Models {
			if value, ok := m.Set.Get(v); ok {
				g.Bars = append(g.Bars, Bar{Series: m.Model, Value: value})
			}
		}
		groups = append(groups, g)
	}
	return Chart{
		Title:       fmt.Sprintf(multiTitleFormat, label),
		XLabel:      AxisLabel,
		YLabel:      "Variable",
		LegendTitle: "Model",
		Series:      coll.ModelNames(),
		Groups:      groups,
	}
}

// RenderSingleModel draws the percentage contributions of one model.
func RenderSingleModel(r Renderer, w io.Writer, set model.Set, columns []string, label string) error {
	return r.Render(w, SingleModel(set, columns, label))
}

// RenderMultiModel draws the percentage contributions of several models side by side.
func RenderMultiModel(r Renderer, w io.Writer, coll model.Collection, columns []string, label string) error {
	return r.Render(w, MultiModel(coll, columns, label))
}

// arrange orders variables by column position. Variables missing from
// columns follow in name order.
func arrange(variables, columns []string) []string {
	present := make(map[string]struct{}, len(variables))
	for _, v := range variables {
		present[v] = struct{}{}
	}
	out := make([]string, 0, len(variables))
	for _, c := range columns {
		if _, ok := present[c]; ok {
			out = append(out, c)
			delete(present, c)
		}
	}
	rest := make([]string, 0, len(present))
	for v := range present {
		rest = append(rest, v)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (c Chart) seriesIndex(name string) int {
	for i, s := range c.Series {
		if s == name {
			return i
		}
	}
	return 0
}

func (c Chart) valueRange() (float64, float64) {
	minVal, maxVal := 0.0, 0.0
	for _, g := range c.Groups {
		for _, b := range g.Bars {
			if b.Value < minVal {
				minVal = b.Value
			}
			if b.Value > maxVal {
				maxVal = b.Value
			}
		}
	}
	return minVal, maxVal
}

func (c Chart) barCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Bars)
	}
	return n
}

func valueLabel(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// Package contribui provides the Bubble Tea contribution viewer.
package contribui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/verte-zerg/contribplot/internal/contrib"
	"github.com/verte-zerg/contribplot/internal/model"
	"github.com/verte-zerg/contribplot/internal/render"
)

const (
	compareTab = "Compare"
	tableTab   = "Table"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// ErrNoModels is returned when the viewer has nothing to show.
var ErrNoModels = errors.New("no models to view")

// Input is the data shown by the viewer.
type Input struct {
	Table   model.Table
	Models  []model.ModelSpec
	Columns []string
	Label   string
}

// Model implements the Bubble Tea contribution viewer.
type Model struct {
	input Input
	label string
	raw   bool

	percent    []model.Set
	rawSets    []model.Set
	collection model.Collection
	summaries  [][]model.VariableSummary

	tabs      []string
	activeTab int
	viewports []viewport.Model

	summaryTable  table.Model
	summaryModel  int
	summaryLayout tableLayout

	width  int
	height int

	labelMode  bool
	labelInput textinput.Model
}

type tableLayout struct {
	width  int
	height int
}

// NewModel computes contributions for every model and builds the viewer.
func NewModel(in Input) (*Model, error) {
	if len(in.Models) == 0 {
		return nil, ErrNoModels
	}
	m := &Model{
		input: in,
		label: in.Label,
	}
	for _, spec := range in.Models {
		raw, err := contrib.Compute(in.Table, spec.Coefficients)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", spec.Name, err)
		}
		pct, err := contrib.ToPercentages(raw)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", spec.Name, err)
		}
		summary, err := contrib.Summarize(in.Table, spec.Coefficients)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", spec.Name, err)
		}
		m.rawSets = append(m.rawSets, raw)
		m.percent = append(m.percent, pct)
		m.summaries = append(m.summaries, summary)
		m.collection.Models = append(m.collection.Models, model.ModelSet{Model: spec.Name, Set: pct})
	}
	if dups := lo.FindDuplicates(m.collection.ModelNames()); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %q", contrib.ErrDuplicateModel, dups[0])
	}

	m.tabs = append(m.collection.ModelNames(), compareTab, tableTab)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.initLabelInput()
	m.summaryTable = buildSummaryTable(m.summaries[0], 80, 10)
	m.renderTabContents()
	log.Debug().Int("models", len(in.Models)).Int("rows", in.Table.Rows()).Msg("viewer ready")
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.labelMode {
			return m.updateLabelInput(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.isTableTab() {
			m.summaryTable.Focus()
		} else {
			m.summaryTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.raw = !m.raw
			m.renderTabContents()
			return m, nil
		case "[":
			m.cycleSummary(-1)
			return m, nil
		case "]":
			m.cycleSummary(1)
			return m, nil
		case "/":
			return m.startLabelInput()
		case "g", "home":
			if m.isTableTab() {
				m.summaryTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.isTableTab() {
				m.summaryTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.isTableTab() {
				var cmd tea.Cmd
				m.summaryTable, cmd = m.summaryTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.labelMode {
		return fitLines(m.renderLabelModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Label returns the chart label currently shown.
func (m *Model) Label() string {
	return m.label
}

// Model tabs come first, followed by the Compare and Table tabs.
func (m *Model) compareIndex() int {
	return len(m.input.Models)
}

func (m *Model) tableIndex() int {
	return len(m.input.Models) + 1
}

func (m *Model) isTableTab() bool {
	return m.activeTab == m.tableIndex()
}

func (m *Model) initLabelInput() {
	input := textinput.New()
	input.Prompt = "Label: "
	input.Placeholder = "model label"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.labelInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setSummaryTableSize(m.width, vpHeight)
	promptWidth := lipgloss.Width(m.labelInput.Prompt)
	m.labelInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.isTableTab() {
		m.summaryTable.Focus()
	} else {
		m.summaryTable.Blur()
	}
}

func (m *Model) cycleSummary(delta int) {
	count := len(m.summaries)
	if count == 0 {
		return
	}
	m.summaryModel = (m.summaryModel + delta + count) % count
	m.summaryTable.SetRows(summaryRows(m.summaries[m.summaryModel]))
	m.summaryTable.GotoTop()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	mode := "percent"
	if m.raw {
		mode = "raw"
	}
	summary := fmt.Sprintf("Label: %s  rows=%d  models=%d  values=%s", m.label, m.input.Table.Rows(), len(m.input.Models), mode)
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(summary, m.width)), m.width)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Raw: r  Label: /  Quit: q"
	if m.isTableTab() {
		help = "Nav: left/right  Rows: up/down  Model: [/]  Label: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.isTableTab() {
		title := titleStyle.Render(fmt.Sprintf("Model: %s", m.input.Models[m.summaryModel].Name))
		view := tableMutedStyle.Render(m.summaryTable.View())
		return fitLines(title+"\n"+view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	for i := range m.input.Models {
		m.viewports[i].SetContent(m.renderSingle(i, width))
	}
	m.viewports[m.compareIndex()].SetContent(m.renderCompare(width))
}

func (m *Model) renderSingle(idx, width int) string {
	var buf bytes.Buffer
	r := render.Text{Width: width, ForceColor: true}
	if err := render.RenderSingleModel(r, &buf, m.percent[idx], m.input.Columns, m.chartLabel(m.input.Models[idx].Name)); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	set := m.percent[idx]
	if m.raw {
		set = m.rawSets[idx]
	}
	if err := render.WriteContributions(&buf, set, m.input.Columns); err != nil {
		return fmt.Sprintf("Failed to render contributions: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderCompare(width int) string {
	if len(m.collection.Models) < 2 {
		return "Load at least two models to compare."
	}
	var buf bytes.Buffer
	r := render.Text{Width: width, ForceColor: true}
	if err := render.RenderMultiModel(r, &buf, m.collection, m.input.Columns, m.label); err != nil {
		return fmt.Sprintf("Failed to render comparison: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) chartLabel(name string) string {
	if m.label == "" {
		return name
	}
	return m.label
}

func (m *Model) startLabelInput() (tea.Model, tea.Cmd) {
	m.labelMode = true
	m.labelInput.SetValue(m.label)
	return m, m.labelInput.Focus()
}

func (m *Model) updateLabelInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.labelMode = false
		m.labelInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.label = strings.TrimSpace(m.labelInput.Value())
		m.labelMode = false
		m.labelInput.Blur()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.labelInput, cmd = m.labelInput.Update(msg)
	return m, cmd
}

func (m *Model) renderLabelModal() string {
	body := []string{
		titleStyle.Render("Chart Label"),
		m.labelInput.View(),
		headerStyle.Render("Empty label uses the model name."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildSummaryTable(summaries []model.VariableSummary, width, height int) table.Model {
	t := table.New(
		table.WithColumns(summaryColumns()),
		table.WithRows(summaryRows(summaries)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(summaryTableStyles())
	return t
}

func summaryColumns() []table.Column {
	widths := []int{14, 10, 12, 12, 12, 13, 9}
	cols := make([]table.Column, len(render.SummaryHeaders))
	for i, title := range render.SummaryHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func summaryRows(summaries []model.VariableSummary) []table.Row {
	return lo.Map(render.SummaryRows(summaries), func(row []string, _ int) table.Row {
		return table.Row(row)
	})
}

func (m *Model) setSummaryTableSize(width, height int) {
	viewportHeight := maxInt(1, height-2)
	if m.summaryLayout.width == width && m.summaryLayout.height == viewportHeight {
		return
	}
	m.summaryLayout.width = width
	m.summaryLayout.height = viewportHeight
	m.summaryTable.SetWidth(width)
	m.summaryTable.SetHeight(viewportHeight)
}

func summaryTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

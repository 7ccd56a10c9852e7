package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/clayout/decl"
	"github.com/wippyai/clayout/layout"
	"github.com/wippyai/clayout/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	declStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Filter key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show layout")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

// entry is one browsable declaration.
type entry struct {
	result *layout.Result
	err    error
	name   string
	kind   string
}

type modelState int

const (
	stateList modelState = iota
	stateFilter
	stateDetail
)

type interactiveModel struct {
	err      error
	opts     options
	detail   string
	entries  []entry
	filter   textinput.Model
	selected int
	state    modelState
	loaded   bool
}

type loadedMsg struct {
	err     error
	entries []entry
}

func newInteractiveModel(opts options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "struct name"
	ti.Width = 40
	return &interactiveModel{opts: opts, filter: ti, state: stateList}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	doc, eng, err := load(m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{entries: collectEntries(doc, eng)}
}

// collectEntries computes every type and variable of doc. Failures are kept
// so they can be inspected.
func collectEntries(doc *decl.Document, eng *layout.Engine) []entry {
	entries := make([]entry, 0, len(doc.Types)+len(doc.Variables))
	for _, t := range doc.Types {
		r, err := eng.Compute(t)
		entries = append(entries, entry{name: t.Spelling(), kind: t.Kind.String(), result: r, err: err})
	}
	for _, v := range doc.Variables {
		r, err := eng.ComputeVariable(v)
		entries = append(entries, entry{name: v.Name, kind: "variable", result: r, err: err})
	}
	return entries
}

// visible returns the entries matching the current filter.
func (m *interactiveModel) visible() []entry {
	q := strings.TrimSpace(m.filter.Value())
	if q == "" {
		return m.entries
	}
	var out []entry
	for _, e := range m.entries {
		if strings.Contains(e.name, q) {
			out = append(out, e)
		}
	}
	return out
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		m.entries = msg.entries
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case key.Matches(msg, keys.Down):
			if m.state == stateList && m.selected < len(m.visible())-1 {
				m.selected++
			}

		case key.Matches(msg, keys.Filter):
			if m.state == stateList {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case key.Matches(msg, keys.Open):
			switch m.state {
			case stateList:
				if vis := m.visible(); m.selected < len(vis) {
					m.detail = describe(vis[m.selected], m.opts.bytes)
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateList
			}

		case key.Matches(msg, keys.Back):
			if m.state == stateDetail {
				m.state = stateList
				m.detail = ""
			}
		}
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Open), key.Matches(msg, keys.Back):
		m.filter.Blur()
		m.state = stateList
		m.selected = 0
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.selected = 0
	return m, cmd
}

// describe renders the detail view of an entry.
func describe(e entry, withBytes bool) string {
	if e.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", e.err))
	}
	var b strings.Builder
	if err := report.Summary(&b, e.result); err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", err))
	}
	if withBytes {
		if err := dumpBytes(&b, e.result); err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v", err))
		}
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading declarations..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("C Layout"))
	b.WriteString(" ")
	b.WriteString(m.opts.declFile)
	b.WriteString("\n\n")

	switch m.state {
	case stateList, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		for i, e := range m.visible() {
			line := formatEntry(e)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter show • / filter • q quit"))

	case stateDetail:
		b.WriteString(m.detail)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}
	return b.String()
}

func formatEntry(e entry) string {
	if e.err != nil {
		return declStyle.Render(e.name) + " " + errorStyle.Render("failed")
	}
	return declStyle.Render(e.name) + " " +
		metaStyle.Render(fmt.Sprintf("%s align %d size %d", e.kind, e.result.Align, e.result.Size))
}

func runInteractive(opts options) error {
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

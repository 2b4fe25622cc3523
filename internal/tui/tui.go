// Package tui renders the inspection surface in the terminal: a step
// sidebar, an expandable detail panel for the selected step, and an
// incremental search bar with match navigation.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ashita-ai/tenken/internal/doctree"
	"github.com/ashita-ai/tenken/internal/inspect"
	"github.com/ashita-ai/tenken/internal/model"
	"github.com/ashita-ai/tenken/internal/pricing"
	"github.com/ashita-ai/tenken/internal/summary"
)

type focus int

const (
	focusSidebar focus = iota
	focusContent
)

// Model holds the UI state for the Bubbletea application.
type Model struct {
	results   []model.Result
	resultIdx int
	session   *inspect.Session
	table     *pricing.Table
	modelName string
	logger    *slog.Logger

	width  int
	height int

	focus         focus
	searchMode    bool
	searchInput   textinput.Model
	contentCursor int
	contentScroll int
}

// row is one visual line of the detail panel: either a group heading or
// a run of leaf fragments sharing a line.
type row struct {
	indent int
	group  *doctree.Node
	frags  []*doctree.Node
}

// New builds the initial model over a loaded run. The first result with
// steps is pre-selected so the surface opens with content.
func New(results []model.Result, table *pricing.Table, modelName string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	si := textinput.New()
	si.Placeholder = "search step content"
	si.CharLimit = 100
	si.Width = 40

	m := Model{
		results:     results,
		session:     inspect.NewSession(logger),
		table:       table,
		modelName:   modelName,
		logger:      logger,
		searchInput: si,
	}
	if len(results) > 0 {
		m.loadResult(0)
	}
	return m
}

// Run starts the interactive program and blocks until it exits.
func Run(results []model.Result, table *pricing.Table, modelName string, logger *slog.Logger) error {
	p := tea.NewProgram(New(results, table, modelName, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m *Model) loadResult(idx int) {
	m.resultIdx = idx
	m.session.SetRecords(m.results[idx].ToolCalls)
	if len(m.session.Steps()) > 0 {
		m.session.SelectStep(0)
	}
	m.contentCursor = 0
	m.contentScroll = 0
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			switch msg.String() {
			case "enter":
				m.session.Search(m.searchInput.Value())
				m.searchMode = false
				m.searchInput.Blur()
				m.scrollToActiveMatch()
				return m, nil
			case "esc", "ctrl+c":
				m.searchMode = false
				m.searchInput.Reset()
				m.searchInput.Blur()
				return m, nil
			}
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "/":
			m.searchMode = true
			m.searchInput.Focus()
			return m, textinput.Blink

		case "esc":
			m.session.ClearSearch()
			m.searchInput.Reset()
			return m, nil

		case "n":
			m.session.Navigate(+1)
			m.scrollToActiveMatch()
			return m, nil

		case "N":
			m.session.Navigate(-1)
			m.scrollToActiveMatch()
			return m, nil

		case "tab":
			if m.focus == focusSidebar {
				m.focus = focusContent
			} else {
				m.focus = focusSidebar
			}
			return m, nil

		case "]":
			if m.resultIdx+1 < len(m.results) {
				m.loadResult(m.resultIdx + 1)
			}
			return m, nil

		case "[":
			if m.resultIdx > 0 {
				m.loadResult(m.resultIdx - 1)
			}
			return m, nil

		case "up", "k":
			if m.focus == focusSidebar {
				m.selectStep(m.session.ActiveStep() - 1)
			} else {
				m.moveCursor(-1)
			}
			return m, nil

		case "down", "j":
			if m.focus == focusSidebar {
				m.selectStep(m.session.ActiveStep() + 1)
			} else {
				m.moveCursor(+1)
			}
			return m, nil

		case "pgup", "ctrl+b":
			m.moveCursor(-m.contentHeight())
			return m, nil

		case "pgdown", "ctrl+f":
			m.moveCursor(m.contentHeight())
			return m, nil

		case "enter", " ":
			if m.focus == focusContent {
				m.toggleCursorGroup()
			}
			return m, nil
		}
	}

	return m, nil
}

func (m *Model) selectStep(i int) {
	if i < 0 || i >= len(m.session.Steps()) {
		return
	}
	m.session.SelectStep(i)
	m.contentCursor = 0
	m.contentScroll = 0
}

func (m *Model) moveCursor(delta int) {
	rows := visibleRows(m.session.Panel())
	if len(rows) == 0 {
		return
	}
	m.contentCursor += delta
	if m.contentCursor < 0 {
		m.contentCursor = 0
	}
	if m.contentCursor >= len(rows) {
		m.contentCursor = len(rows) - 1
	}
	m.clampScroll(len(rows))
}

func (m *Model) clampScroll(rowCount int) {
	h := m.contentHeight()
	if m.contentCursor < m.contentScroll {
		m.contentScroll = m.contentCursor
	}
	if m.contentCursor >= m.contentScroll+h {
		m.contentScroll = m.contentCursor - h + 1
	}
	if m.contentScroll > rowCount-1 {
		m.contentScroll = rowCount - 1
	}
	if m.contentScroll < 0 {
		m.contentScroll = 0
	}
}

func (m *Model) toggleCursorGroup() {
	rows := visibleRows(m.session.Panel())
	if m.contentCursor < 0 || m.contentCursor >= len(rows) {
		return
	}
	if g := rows[m.contentCursor].group; g != nil {
		g.Expanded = !g.Expanded
	}
}

// scrollToActiveMatch moves the content viewport to the row holding the
// navigator's current match. Highlighting expands collapsed ancestors,
// so the match is always on some visible row.
func (m *Model) scrollToActiveMatch() {
	panel := m.session.Panel()
	if panel == nil || m.session.SearchState().MatchCount == 0 {
		return
	}
	rows := visibleRows(panel)
	for i, r := range rows {
		for _, f := range r.frags {
			if f.Kind == doctree.Annotation && f.Active {
				m.contentCursor = i
				m.clampScroll(len(rows))
				return
			}
		}
	}
}

// visibleRows flattens the expanded portion of the panel tree into
// renderable lines. Inline fragments produced by highlight splits stay
// on the line of the leaf they came from.
func visibleRows(root *doctree.Node) []row {
	if root == nil {
		return nil
	}
	var rows []row
	var cur *row

	flush := func() {
		if cur != nil {
			rows = append(rows, *cur)
			cur = nil
		}
	}

	var walk func(n *doctree.Node, indent int)
	walk = func(n *doctree.Node, indent int) {
		for _, c := range n.Children {
			switch c.Kind {
			case doctree.Group:
				flush()
				rows = append(rows, row{indent: indent, group: c})
				if c.Expanded {
					walk(c, indent+1)
				}
			case doctree.Text, doctree.Annotation:
				if !c.Inline || cur == nil {
					flush()
					cur = &row{indent: indent}
				}
				cur.frags = append(cur.frags, c)
			default:
				flush()
				walk(c, indent)
			}
		}
		flush()
	}
	walk(root, 0)
	return rows
}

func (m Model) sidebarWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	return w
}

func (m Model) contentHeight() int {
	// Header, footer, and search line take three rows.
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) View() string {
	if len(m.results) == 0 {
		return "no results loaded\n"
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	r := m.results[m.resultIdx]
	header := headerStyle.Render(fmt.Sprintf("tenken  result %d/%d", m.resultIdx+1, len(m.results))) +
		dimStyle.Render("  "+truncate(r.Query, m.width-24))

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.viewSidebar(),
		m.viewContent(),
	)

	return header + "\n" + body + "\n" + m.viewFooter()
}

func (m Model) viewSidebar() string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("212"))
	stepStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	width := m.sidebarWidth()
	query := m.session.SearchState().Query

	var b strings.Builder
	steps := m.session.Steps()
	if len(steps) == 0 {
		b.WriteString(stepStyle.Render("(no steps)"))
	}
	for i, st := range steps {
		line := fmt.Sprintf("%2d %s", st.Index+1, st.Label)
		if st.Detail != "" {
			line += " · " + st.Detail
		}
		line = truncate(line, width-6)
		if query != "" {
			if p := m.session.PreviewFor(i, query); p.Matches > 0 {
				line += countStyle.Render(fmt.Sprintf(" (%d)", p.Matches))
			}
		}
		if i == m.session.ActiveStep() {
			line = activeStyle.Render(line)
		} else {
			line = stepStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.contentHeight()).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		Render(b.String())
}

func (m Model) viewContent() string {
	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle := lipgloss.NewStyle().Background(lipgloss.Color("58"))
	activeMatchStyle := lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Background(lipgloss.Color("236"))

	rows := visibleRows(m.session.Panel())
	h := m.contentHeight()

	var b strings.Builder
	for i := m.contentScroll; i < len(rows) && i < m.contentScroll+h; i++ {
		rw := rows[i]
		indent := strings.Repeat("  ", rw.indent)

		var line string
		if rw.group != nil {
			marker := "▸"
			if rw.group.Expanded {
				marker = "▾"
			}
			line = indent + groupStyle.Render(marker+" "+rw.group.Label)
		} else {
			var parts []string
			for _, f := range rw.frags {
				switch {
				case f.Kind == doctree.Annotation && f.Active:
					parts = append(parts, activeMatchStyle.Render(f.Text))
				case f.Kind == doctree.Annotation:
					parts = append(parts, matchStyle.Render(f.Text))
				default:
					parts = append(parts, textStyle.Render(f.Text))
				}
			}
			line = indent + strings.Join(parts, "")
		}

		if m.focus == focusContent && i == m.contentCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return lipgloss.NewStyle().
		Width(m.width - m.sidebarWidth() - 1).
		Height(h).
		Render(b.String())
}

func (m Model) viewFooter() string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	searchStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	if m.searchMode {
		return "/" + m.searchInput.View()
	}

	st := m.session.SearchState()
	var status string
	switch {
	case st.Query != "" && st.MatchCount == 0:
		status = searchStyle.Render(fmt.Sprintf("  %q: no matches", st.Query))
	case st.MatchCount > 0:
		status = searchStyle.Render(fmt.Sprintf("  %q: match %d/%d", st.Query, st.CurrentMatch+1, st.MatchCount))
	}

	run := summary.ForResult(m.results[m.resultIdx], m.table, m.modelName)
	return helpStyle.Render("↑/↓ steps · tab focus · space expand · / search · n/N match · [ ] result · q quit") +
		status + helpStyle.Render("  |  "+run.Line())
}

func truncate(s string, max int) string {
	if max <= 1 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/tenken/internal/doctree"
	"github.com/ashita-ai/tenken/internal/model"
	"github.com/ashita-ai/tenken/internal/pricing"
	"github.com/ashita-ai/tenken/internal/testutil"
)

func testResults() []model.Result {
	return []model.Result{
		{
			Query: "first question",
			ToolCalls: []any{
				map[string]any{"name": "lookup", "arguments": `{"term":"alpha"}`, "response": `{"value":"beta"}`},
				map[string]any{"type": "web_search", "action_type": "search", "status": "completed", "query": "gamma delta"},
			},
			Usage:   map[string]any{"input_tokens": float64(100), "output_tokens": float64(50)},
			Ordinal: 1,
		},
		{
			Query:     "second question",
			ToolCalls: []any{map[string]any{"name": "fetch", "arguments": `{"url":"https://x"}`}},
			Ordinal:   2,
		},
	}
}

func testModel(t *testing.T) Model {
	t.Helper()
	tbl, err := pricing.Load()
	require.NoError(t, err)
	m := New(testResults(), tbl, "gpt-4o", testutil.TestLogger())
	m.width = 120
	m.height = 40
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNew_PreSelectsFirstStep(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, 0, m.session.ActiveStep())
	require.NotNil(t, m.session.Panel())
}

func TestStepNavigation(t *testing.T) {
	m := testModel(t)

	m = send(m, key("down"))
	assert.Equal(t, 1, m.session.ActiveStep())

	// Selection clamps at the last step.
	m = send(m, key("down"))
	assert.Equal(t, 1, m.session.ActiveStep())

	m = send(m, key("up"))
	assert.Equal(t, 0, m.session.ActiveStep())
}

func TestResultSwitching(t *testing.T) {
	m := testModel(t)

	m = send(m, key("]"))
	assert.Equal(t, 1, m.resultIdx)
	require.Len(t, m.session.Steps(), 1)
	assert.Equal(t, "fetch", m.session.Steps()[0].Label)

	// Clamps at the last result.
	m = send(m, key("]"))
	assert.Equal(t, 1, m.resultIdx)

	m = send(m, key("["))
	assert.Equal(t, 0, m.resultIdx)
}

func TestSearchFlow(t *testing.T) {
	m := testModel(t)

	m = send(m, key("/"))
	assert.True(t, m.searchMode)

	m = send(m, key("alpha"), key("enter"))
	assert.False(t, m.searchMode)
	st := m.session.SearchState()
	assert.Equal(t, "alpha", st.Query)
	assert.Equal(t, 1, st.MatchCount)
	assert.Equal(t, 0, st.CurrentMatch)

	// Escape outside input mode clears the highlights.
	m = send(m, key("esc"))
	assert.Equal(t, 0, m.session.SearchState().MatchCount)
}

func TestSearchInputCancel(t *testing.T) {
	m := testModel(t)

	m = send(m, key("/"), key("alp"), key("esc"))
	assert.False(t, m.searchMode)
	assert.Equal(t, "", m.session.SearchState().Query, "cancelled input never ran a search")
}

func TestMatchNavigationKeys(t *testing.T) {
	m := testModel(t)

	// "a" appears in both arguments and response of step 0.
	m = send(m, key("/"), key("alph"), key("enter"))
	require.Equal(t, 1, m.session.SearchState().MatchCount)

	m = send(m, key("n"))
	assert.Equal(t, 0, m.session.SearchState().CurrentMatch, "single match wraps to itself")
}

func TestExpandToggle(t *testing.T) {
	m := testModel(t)
	// Step 1 is a web search whose unrendered fields land in a collapsed
	// raw group.
	m = send(m, key("down"), key("tab"))

	rows := visibleRows(m.session.Panel())
	groupIdx := -1
	for i, r := range rows {
		if r.group != nil && !r.group.Expanded {
			groupIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, groupIdx, 0, "panel has a collapsed group")

	for m.contentCursor < groupIdx {
		m = send(m, key("down"))
	}
	m = send(m, key("enter"))

	assert.True(t, visibleRows(m.session.Panel())[groupIdx].group.Expanded)
	m = send(m, key("enter"))
	assert.False(t, visibleRows(m.session.Panel())[groupIdx].group.Expanded)
}

func TestVisibleRows_InlineFragmentsShareLine(t *testing.T) {
	root := doctree.NewContainer()
	leaf := doctree.NewText("term: alpha")
	root.Append(leaf)
	require.Len(t, doctree.WrapSpans(leaf, []doctree.Span{{Start: 6, End: 11}}), 1)

	rows := visibleRows(root)
	require.Len(t, rows, 1, "a split leaf still renders as one line")
	require.Len(t, rows[0].frags, 2)
	assert.Equal(t, "term: ", rows[0].frags[0].Text)
	assert.Equal(t, "alpha", rows[0].frags[1].Text)
}

func TestVisibleRows_CollapsedGroupHidesChildren(t *testing.T) {
	root := doctree.NewContainer()
	g := doctree.NewGroup("raw")
	root.Append(g)
	g.Append(doctree.NewText("hidden"))

	rows := visibleRows(root)
	require.Len(t, rows, 1)
	assert.Equal(t, "raw", rows[0].group.Label)

	g.Expanded = true
	rows = visibleRows(root)
	require.Len(t, rows, 2)
	assert.Equal(t, "hidden", rows[1].frags[0].Text)
}

func TestView_RendersWithoutPanic(t *testing.T) {
	m := testModel(t)
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()
	assert.Contains(t, out, "lookup")
	assert.Contains(t, out, "Total tokens: 150")
}

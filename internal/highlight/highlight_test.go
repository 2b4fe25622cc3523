package highlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/tenken/internal/doctree"
	"github.com/ashita-ai/tenken/internal/highlight"
)

func panelWith(texts ...string) *doctree.Node {
	root := doctree.NewContainer()
	group := doctree.NewGroup("response")
	root.Append(group)
	for _, s := range texts {
		group.Append(doctree.NewText(s))
	}
	return root
}

func TestSearch_SingleMatchRoundTrip(t *testing.T) {
	root := panelWith("the quick fox")
	e := highlight.NewEngine()

	e.Search(root, "quick")
	st := e.SearchState()
	assert.Equal(t, 1, st.MatchCount)
	assert.Equal(t, 0, st.CurrentMatch)
	assert.Equal(t, "quick", st.Query)
	assert.Equal(t, highlight.Highlighted, e.State())

	anns := root.Annotations()
	require.Len(t, anns, 1)
	assert.Equal(t, "quick", anns[0].Text)
	assert.True(t, anns[0].Active, "first match becomes the active one")

	// Clearing restores the exact original text node content and count.
	e.Clear(root)
	assert.Equal(t, "the quick fox", root.PlainText())
	require.Len(t, root.TextLeaves(), 1)
	assert.Empty(t, root.Annotations())
	assert.Equal(t, highlight.Idle, e.State())
	assert.Equal(t, highlight.SearchState{Query: "", MatchCount: 0, CurrentMatch: -1}, e.SearchState())
}

func TestSearch_EmptyQueryClears(t *testing.T) {
	root := panelWith("alpha beta alpha")
	e := highlight.NewEngine()

	e.Search(root, "alpha")
	require.Equal(t, 2, e.SearchState().MatchCount)

	e.Search(root, "   ")
	assert.Empty(t, root.Annotations())
	assert.Equal(t, "alpha beta alpha", root.PlainText())
	assert.Equal(t, highlight.SearchState{Query: "", MatchCount: 0, CurrentMatch: -1}, e.SearchState())
	assert.Equal(t, highlight.Idle, e.State())
}

func TestSearch_RefinementStartsClean(t *testing.T) {
	root := panelWith("aaa bbb aaa")
	e := highlight.NewEngine()

	e.Search(root, "aaa")
	require.Equal(t, 2, e.SearchState().MatchCount)

	// A second search must not see (or keep) the first search's annotations.
	e.Search(root, "bbb")
	st := e.SearchState()
	assert.Equal(t, 1, st.MatchCount)
	assert.Equal(t, "bbb", st.Query)
	anns := root.Annotations()
	require.Len(t, anns, 1)
	assert.Equal(t, "bbb", anns[0].Text)
	assert.Equal(t, "aaa bbb aaa", root.PlainText())
}

func TestSearch_CaseInsensitiveNonOverlapping(t *testing.T) {
	root := panelWith("AAAA")
	e := highlight.NewEngine()

	e.Search(root, "aa")
	assert.Equal(t, 2, e.SearchState().MatchCount, "non-overlapping scan: aa in AAAA is 2")
}

func TestSearch_ExpandsCollapsedAncestors(t *testing.T) {
	root := doctree.NewContainer()
	outer := doctree.NewGroup("arguments")
	inner := doctree.NewGroup("filters")
	other := doctree.NewGroup("unrelated")
	root.Append(outer, other)
	outer.Append(inner)
	inner.Append(doctree.NewText("city: berlin"))
	other.Append(doctree.NewText("nothing here"))

	e := highlight.NewEngine()
	e.Search(root, "berlin")

	assert.True(t, outer.Expanded, "every collapsed ancestor of a match is expanded")
	assert.True(t, inner.Expanded)
	assert.False(t, other.Expanded, "groups without matches stay collapsed")
}

func TestSearch_ZeroMatchesRetainsQuery(t *testing.T) {
	root := panelWith("nothing to see")
	e := highlight.NewEngine()

	e.Search(root, "zebra")
	st := e.SearchState()
	assert.Equal(t, 0, st.MatchCount)
	assert.Equal(t, -1, st.CurrentMatch)
	assert.Equal(t, "zebra", st.Query, "query is retained so the caller can show \"no matches\"")
	assert.Equal(t, highlight.Idle, e.State())
}

func TestSearch_NilContainerNoOp(t *testing.T) {
	e := highlight.NewEngine()
	e.Search(nil, "anything") // must not panic
	e.Navigate(nil, 1)
	e.Clear(nil)
	assert.Equal(t, highlight.Idle, e.State())
}

func TestClear_Idempotent(t *testing.T) {
	root := panelWith("one match here")
	e := highlight.NewEngine()
	e.Search(root, "match")

	e.Clear(root)
	first := root.PlainText()
	firstLeaves := len(root.TextLeaves())

	e.Clear(root)
	assert.Equal(t, first, root.PlainText())
	assert.Len(t, root.TextLeaves(), firstLeaves)
}

func TestNavigate_WrapsBothDirections(t *testing.T) {
	root := panelWith("x x x")
	e := highlight.NewEngine()
	e.Search(root, "x")
	require.Equal(t, 3, e.SearchState().MatchCount)
	require.Equal(t, 0, e.SearchState().CurrentMatch)

	e.Navigate(root, +1)
	assert.Equal(t, 1, e.SearchState().CurrentMatch)
	e.Navigate(root, +1)
	assert.Equal(t, 2, e.SearchState().CurrentMatch)
	e.Navigate(root, +1)
	assert.Equal(t, 0, e.SearchState().CurrentMatch, "forward navigation wraps to the first match")

	e.Navigate(root, -1)
	assert.Equal(t, 2, e.SearchState().CurrentMatch, "backward navigation wraps to the last match")

	// Exactly one annotation is active after any navigation.
	active := 0
	for _, ann := range root.Annotations() {
		if ann.Active {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestNavigate_NoMatchesIsNoOp(t *testing.T) {
	root := panelWith("plain")
	e := highlight.NewEngine()
	e.Search(root, "absent")
	e.Navigate(root, +1)
	assert.Equal(t, -1, e.SearchState().CurrentMatch)
}

func TestNavigate_ClampsStaleCurrentMatch(t *testing.T) {
	root := panelWith("y y y")
	e := highlight.NewEngine()
	e.Search(root, "y")
	e.Navigate(root, +1)
	e.Navigate(root, +1)
	require.Equal(t, 2, e.SearchState().CurrentMatch)

	// The tree re-rendered with fewer matches since CurrentMatch was set.
	smaller := panelWith("y")
	fresh := highlight.NewEngine()
	fresh.Search(smaller, "y")
	e.Navigate(smaller, +1) // stale CurrentMatch=2 against a 1-match tree
	st := e.SearchState()
	assert.Equal(t, 0, st.CurrentMatch)
	assert.Equal(t, 1, st.MatchCount, "match count resyncs to the live annotation set")
}

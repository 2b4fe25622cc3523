// Package highlight implements in-place search highlighting over a
// rendered content tree: annotation insertion and removal, ancestor
// auto-expansion, and wrap-around navigation between matches.
//
// The engine is a small state machine (Idle → Searching → Highlighted →
// Idle) and is re-entrant: every search starts by clearing the previous
// annotation set, so repeated, refined, and cleared searches never leave
// stale highlight artifacts in the tree.
package highlight

import (
	"strings"

	"github.com/ashita-ai/tenken/internal/doctree"
)

// State is the engine's position in its lifecycle.
type State int

const (
	// Idle: no active query (also the terminal state of a zero-match
	// search — equivalent for navigation, but the query is retained so
	// the surface can show "no matches").
	Idle State = iota
	// Searching: a non-empty query is being (re)applied to the tree.
	Searching
	// Highlighted: a stable annotation set is present.
	Highlighted
)

// SearchState is the surface-visible search position. CurrentMatch is an
// index into the live annotation list in document order, not a stored id;
// it is recomputed by position after every highlight rebuild.
type SearchState struct {
	Query        string `json:"query"`
	MatchCount   int    `json:"match_count"`
	CurrentMatch int    `json:"current_match"` // -1 when no match is active
}

// Engine owns annotation insertion and removal for one rendered tree at a
// time. Single-threaded by contract: the tree is mutated synchronously and
// exclusively during a call, and no other writer may touch it meanwhile.
type Engine struct {
	state  State
	search SearchState
}

// NewEngine returns an idle engine.
func NewEngine() *Engine {
	return &Engine{state: Idle, search: SearchState{CurrentMatch: -1}}
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State { return e.state }

// SearchState returns the current search position.
func (e *Engine) SearchState() SearchState { return e.search }

// Clear removes every annotation from the tree, restores the original
// text runs, and resets the search state. Idempotent: clearing a tree
// with no annotations is a no-op. A nil (detached) container only resets
// the state — the tree is assumed to be unmounting.
func (e *Engine) Clear(container *doctree.Node) {
	clearTree(container)
	e.search = SearchState{CurrentMatch: -1}
	e.state = Idle
}

// Search applies a query to the tree. An empty or whitespace query clears
// highlights and resets the state — terminal for the call. Otherwise the
// previous annotation set is removed first (even a mid-search refinement
// starts clean), matching leaves get their collapsed ancestors expanded,
// and every non-overlapping occurrence is wrapped in an annotation. The
// first match, if any, becomes active.
func (e *Engine) Search(container *doctree.Node, query string) {
	if strings.TrimSpace(query) == "" {
		e.Clear(container)
		return
	}
	if container == nil {
		// Stale container reference; the panel is unmounting.
		return
	}

	e.state = Searching
	clearTree(container)

	needle := strings.ToLower(query)
	for _, leaf := range container.TextLeaves() {
		lower := strings.ToLower(leaf.Text)
		if !strings.Contains(lower, needle) {
			continue
		}
		leaf.ExpandAncestors()
		doctree.WrapSpans(leaf, matchSpans(lower, needle))
	}

	// The live annotation list in document order is the match set.
	anns := container.Annotations()
	e.search = SearchState{Query: query, MatchCount: len(anns), CurrentMatch: -1}
	if len(anns) > 0 {
		anns[0].Active = true
		e.search.CurrentMatch = 0
		e.state = Highlighted
	} else {
		e.state = Idle
	}
}

// Navigate moves the active match by direction (+1 or -1), wrapping
// around in both directions. No-op with zero annotations. A stale
// CurrentMatch (the tree re-rendered since it was set) is clamped into
// range before the step.
func (e *Engine) Navigate(container *doctree.Node, direction int) {
	if container == nil {
		return
	}
	anns := container.Annotations()
	n := len(anns)
	if n == 0 {
		return
	}

	cur := e.search.CurrentMatch
	if cur >= n {
		cur = n - 1
	}
	if cur >= 0 {
		anns[cur].Active = false
	}

	next := ((cur+direction)%n + n) % n
	anns[next].Active = true
	e.search.CurrentMatch = next
	e.search.MatchCount = n
}

// clearTree walks the annotations in document order, replaces each with
// its plain-text content, and merges adjacent runs so no split nodes
// remain. Safe on nil and annotation-free trees.
func clearTree(container *doctree.Node) {
	if container == nil {
		return
	}
	anns := container.Annotations()
	for _, ann := range anns {
		doctree.Unwrap(ann)
	}
	if len(anns) > 0 {
		container.MergeTextRuns()
	}
}

// matchSpans returns the non-overlapping occurrences of needle in the
// lowercased text, in ascending order. Both strings are pre-lowered by
// the caller; offsets index the original leaf text.
func matchSpans(lower, needle string) []doctree.Span {
	var spans []doctree.Span
	for pos := 0; ; {
		i := strings.Index(lower[pos:], needle)
		if i < 0 {
			return spans
		}
		start := pos + i
		spans = append(spans, doctree.Span{Start: start, End: start + len(needle)})
		pos = start + len(needle)
	}
}

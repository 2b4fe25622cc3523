// Package inspect orchestrates the trace inspection core for one result:
// canonical steps derived from the raw tool-call records, the active
// step's rendered panel, and the single live search state. Renderers
// (terminal UI, MCP tools) consume sessions; they never touch the
// highlight engine or the tree directly.
package inspect

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ashita-ai/tenken/internal/doctree"
	"github.com/ashita-ai/tenken/internal/highlight"
	"github.com/ashita-ai/tenken/internal/searchtext"
	"github.com/ashita-ai/tenken/internal/step"
)

// Session is the inspection state for one raw record list. All methods
// run synchronously on the caller's goroutine: one user-interaction turn
// completes before the next is processed, and the panel tree is mutated
// exclusively during a call.
type Session struct {
	id      uuid.UUID
	logger  *slog.Logger
	records []any
	steps   []step.Step
	active  int
	panel   *doctree.Node
	engine  *highlight.Engine
}

// NewSession returns an empty session.
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:     uuid.New(),
		logger: logger,
		active: -1,
		engine: highlight.NewEngine(),
	}
}

// ID identifies the session across surface re-renders.
func (s *Session) ID() uuid.UUID { return s.id }

// SetRecords replaces the raw record list. Steps are re-derived from
// scratch (normalization is a pure re-projection, not a diff) and every
// previously held step index, panel, and search state is invalidated.
func (s *Session) SetRecords(records []any) {
	s.records = records
	s.steps = step.Normalize(records)
	s.active = -1
	s.panel = nil
	s.engine.Clear(nil)
	s.logger.Debug("session records replaced", "session_id", s.id, "steps", len(s.steps))
}

// Steps returns the canonical step sequence.
func (s *Session) Steps() []step.Step { return s.steps }

// ActiveStep returns the selected step index, -1 when none.
func (s *Session) ActiveStep() int { return s.active }

// Panel returns the active step's rendered tree, nil when no step is
// selected. Valid only until the next SelectStep, SetRecords, or Detach.
func (s *Session) Panel() *doctree.Node { return s.panel }

// SearchState returns the live search position.
func (s *Session) SearchState() highlight.SearchState { return s.engine.SearchState() }

// SelectStep makes step i the active one: outstanding highlights are
// cleared, the old panel is discarded, and a fresh panel is rendered.
// Out-of-range indices are ignored.
func (s *Session) SelectStep(i int) {
	if i < 0 || i >= len(s.steps) {
		return
	}
	// The old tree is about to be destroyed; its annotations go with it.
	s.engine.Clear(s.panel)
	s.active = i
	s.panel = buildPanel(s.steps[i])
}

// Search applies a query to the active panel. Empty queries clear.
func (s *Session) Search(query string) {
	s.engine.Search(s.panel, query)
}

// Navigate cycles the active match by direction (+1 or -1).
func (s *Session) Navigate(direction int) {
	s.engine.Navigate(s.panel, direction)
}

// ClearSearch removes all highlights and resets the search state
// (the Escape path).
func (s *Session) ClearSearch() {
	s.engine.Clear(s.panel)
}

// Detach clears highlights and drops the panel ahead of unmounting.
// The session itself stays usable: selecting a step re-renders.
func (s *Session) Detach() {
	s.engine.Clear(s.panel)
	s.panel = nil
	s.active = -1
}

// Preview is the sidebar's per-step match preview for the current query.
type Preview struct {
	Matches int
	Snippet string
}

// PreviewFor reports whether and where a query matches a step's
// searchable text, without touching any rendered tree.
func (s *Session) PreviewFor(i int, query string) Preview {
	if i < 0 || i >= len(s.records) {
		return Preview{}
	}
	text := searchtext.Build(s.records[i])
	count := searchtext.CountMatches(text, query)
	if count == 0 {
		return Preview{}
	}
	pos := searchtext.FirstMatch(text, query)
	return Preview{
		Matches: count,
		Snippet: searchtext.Snippet(text, pos, len(query)),
	}
}

// buildPanel renders a step into its content tree. Tool steps get
// argument and response sections; web-search steps get their summary
// fields. Every step ends with the full raw record as a collapsed
// group, so nothing the executor emitted is unreachable.
func buildPanel(st step.Step) *doctree.Node {
	root := doctree.NewContainer()

	var shown []string
	switch st.Kind {
	case step.KindTool:
		root.Append(doctree.NewText("tool: " + st.Label))
		appendFieldGroup(root, "arguments", st.Raw)
		appendFieldGroup(root, "response", st.Raw)
		shown = []string{"name", "arguments", "response"}
	default:
		root.Append(doctree.NewText("action: " + st.Label))
		if st.Detail != "" {
			root.Append(doctree.NewText("detail: " + st.Detail))
		}
		shown = []string{"type", "action_type", "query", "url", "pattern"}
	}

	// A collapsed raw section for whatever the panel did not render.
	// Shown fields are excluded so a search never double-counts them.
	if rest := rawRemainder(st.Raw, shown); rest != nil {
		raw := doctree.NewGroup("raw")
		root.Append(raw)
		doctree.AppendInto(raw, rest)
	}
	return root
}

// rawRemainder strips the already-rendered fields out of a record,
// returning nil when nothing is left. Non-map records pass through
// whole, they were never rendered elsewhere.
func rawRemainder(raw any, shown []string) any {
	rec, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	rest := make(map[string]any, len(rec))
	for k, v := range rec {
		rest[k] = v
	}
	for _, k := range shown {
		delete(rest, k)
	}
	if len(rest) == 0 {
		return nil
	}
	return rest
}

// appendFieldGroup adds an expandable section for one record field,
// pre-expanded since arguments and responses are what the panel is for.
// Pre-serialized JSON strings are decoded for tree rendering; malformed
// ones stay opaque text, still searchable.
func appendFieldGroup(root *doctree.Node, field string, raw any) {
	rec, ok := raw.(map[string]any)
	if !ok {
		return
	}
	v, ok := rec[field]
	if !ok {
		return
	}
	group := doctree.NewGroup(field)
	group.Expanded = true
	root.Append(group)
	doctree.AppendInto(group, decodeMaybeJSON(v))
}

// decodeMaybeJSON decodes a string that holds serialized JSON, leaving
// everything else (including malformed JSON) untouched.
func decodeMaybeJSON(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return s
	}
	// Scalar JSON like "42" reads better as its literal text.
	switch decoded.(type) {
	case map[string]any, []any:
		return decoded
	default:
		return s
	}
}

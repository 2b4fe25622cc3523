// Package step normalizes heterogeneous trace records — plain tool
// invocations and the two web-search wire shapes emitted by different
// executor versions — into one canonical, orderable sequence of steps.
package step

import (
	"github.com/ysmood/gson"
)

// Kind discriminates the two canonical step categories.
type Kind string

const (
	KindTool      Kind = "tool"
	KindWebSearch Kind = "web_search"
)

// Step is one canonical, ordered unit of agent activity. Immutable once
// produced; the whole slice is re-derived whenever the raw list changes.
//
// Index is the only identity a step has — raw records carry no durable id.
// Consumers must not hold an Index across a record refresh: reordering the
// input re-derives every step and invalidates all previously held indices.
type Step struct {
	Index int    `json:"index"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	// Detail is a short human summary for web-search steps (query text,
	// URL, or pattern). Empty for tool steps.
	Detail string `json:"detail,omitempty"`
	// Raw retains the full record for detail rendering and search.
	Raw any `json:"-"`
}

// Action types the executors emit for web-search steps.
const (
	actionSearch     = "search"
	actionOpenPage   = "open_page"
	actionFindInPage = "find_in_page"
)

var actionLabels = map[string]string{
	actionSearch:     "Web Search",
	actionOpenPage:   "Open Page",
	actionFindInPage: "Find in Page",
}

// shape is the resolved wire shape of a raw record.
type shape int

const (
	shapeTool shape = iota
	shapeWebSearchNew
	shapeWebSearchLegacy
	shapeUnknown
)

// discriminate resolves the tagged union in one place. Call sites never
// probe optional fields themselves.
func discriminate(j gson.JSON) shape {
	if strAt(j, "type") == "web_search" {
		return shapeWebSearchNew
	}
	if j.Has("name") {
		return shapeTool
	}
	if j.Has("raw_items") {
		return shapeWebSearchLegacy
	}
	return shapeUnknown
}

// Normalize turns a raw record list into the canonical step sequence.
// Pure re-projection: no side effects, one step per record, input order
// preserved, Index a dense 0..n-1. A malformed record degrades to an
// unknown web-search step — one bad record never drops the rest.
func Normalize(records []any) []Step {
	steps := make([]Step, 0, len(records))
	for i, rec := range records {
		s := normalizeOne(rec)
		s.Index = i
		s.Raw = rec
		steps = append(steps, s)
	}
	return steps
}

func normalizeOne(rec any) Step {
	j := gson.New(rec)
	switch discriminate(j) {
	case shapeTool:
		label := strAt(j, "name")
		if label == "" {
			label = "unknown"
		}
		return Step{Kind: KindTool, Label: label}

	case shapeWebSearchNew:
		return Step{
			Kind:   KindWebSearch,
			Label:  actionLabel(strAt(j, "action_type")),
			Detail: detailOf(j),
		}

	case shapeWebSearchLegacy:
		action := j.Get("raw_items").Get("action")
		if !hasValue(action) {
			// Envelope without a nested action: type is unknown, status
			// lives on the envelope only.
			return Step{Kind: KindWebSearch, Label: "unknown"}
		}
		return Step{
			Kind:   KindWebSearch,
			Label:  actionLabel(strAt(action, "type")),
			Detail: detailOf(action),
		}

	default:
		return Step{Kind: KindWebSearch, Label: "unknown"}
	}
}

// actionLabel maps an executor action type to its display label. Known
// types get human names, a missing type means a bare web_search record,
// and anything else passes through verbatim.
func actionLabel(actionType string) string {
	if actionType == "" {
		return "Web Search"
	}
	if label, ok := actionLabels[actionType]; ok {
		return label
	}
	return actionType
}

// detailOf picks the single summary field shown beside a web-search step:
// query > url > pattern > first source URL > empty. Presentation only —
// Raw keeps everything.
func detailOf(j gson.JSON) string {
	if q := strAt(j, "query"); q != "" {
		return q
	}
	if u := strAt(j, "url"); u != "" {
		return u
	}
	if p := strAt(j, "pattern"); p != "" {
		return p
	}
	return firstSourceURL(j)
}

// firstSourceURL handles both source shapes seen in recorded runs:
// a list of URL strings and a list of {url: ...} objects.
func firstSourceURL(j gson.JSON) string {
	if !j.Has("sources") {
		return ""
	}
	sources, ok := j.Get("sources").Val().([]any)
	if !ok || len(sources) == 0 {
		return ""
	}
	switch src := sources[0].(type) {
	case string:
		return src
	case map[string]any:
		if u, ok := src["url"].(string); ok {
			return u
		}
	}
	return ""
}

// strAt reads a string field, tolerating missing keys and non-string
// values (both occur in imported runs).
func strAt(j gson.JSON, path string) string {
	if !j.Has(path) {
		return ""
	}
	s, _ := j.Get(path).Val().(string)
	return s
}

func hasValue(j gson.JSON) bool {
	return j.Val() != nil
}

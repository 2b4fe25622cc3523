// Package searchtext derives a flat, searchable text form of a raw trace
// record and implements the substring-match primitives shared by the
// sidebar previews and the highlight engine.
package searchtext

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ysmood/gson"
)

// searchFields is the fixed field order of the searchable blob. Changing it
// changes match positions, so it is append-only.
var searchFields = []string{
	"arguments",
	"response",
	"query",
	"url",
	"pattern",
	"sources",
	"raw_items",
}

// Build flattens a raw record into one searchable string. Deterministic for
// a given record; built fresh per search and never cached across records.
// Per-field failures fall back to the field's literal string form — partial
// searchability beats total failure.
func Build(record any) string {
	j := gson.New(record)
	if _, ok := j.Val().(map[string]any); !ok {
		return stringify(j.Val())
	}

	parts := make([]string, 0, len(searchFields))
	for _, field := range searchFields {
		if !j.Has(field) {
			continue
		}
		if s := stringify(j.Get(field).Val()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// stringify renders a field value for search: strings stay literal (they
// are often pre-serialized JSON already, malformed or not), everything
// else is JSON-serialized with a plain-print fallback.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprint(val)
	}
}

// CountMatches counts non-overlapping, case-insensitive occurrences of
// query in text. The scan advances by the full match length after each
// hit, so "aa" in "aaaa" counts 2, not 3. An empty query matches nothing.
func CountMatches(text, query string) int {
	if text == "" || query == "" {
		return 0
	}
	haystack := strings.ToLower(text)
	needle := strings.ToLower(query)

	count := 0
	for pos := 0; ; {
		i := strings.Index(haystack[pos:], needle)
		if i < 0 {
			break
		}
		count++
		pos += i + len(needle)
	}
	return count
}

// FirstMatch returns the byte offset of the first case-insensitive
// occurrence of query in text, or -1.
func FirstMatch(text, query string) int {
	if text == "" || query == "" {
		return -1
	}
	return strings.Index(strings.ToLower(text), strings.ToLower(query))
}

const (
	snippetBefore = 20
	snippetAfter  = 40
)

// Snippet extracts a short preview around a match: up to 20 characters
// before and 40 after, with ellipsis markers when truncated. List-preview
// only — full highlighting works on the rendered tree, not on this string.
func Snippet(text string, pos, queryLen int) string {
	if pos < 0 || pos > len(text) {
		return ""
	}
	start := pos - snippetBefore
	if start < 0 {
		start = 0
	}
	end := pos + queryLen + snippetAfter
	if end > len(text) {
		end = len(text)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("…")
	}
	b.WriteString(text[start:end])
	if end < len(text) {
		b.WriteString("…")
	}
	return b.String()
}

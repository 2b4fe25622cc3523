package doctree

import (
	"fmt"
	"sort"
	"strconv"
)

// FromValue renders an arbitrary JSON-ish value into a content tree:
// objects and arrays become collapsed expandable groups, scalars become
// text leaves. Object keys are sorted so document order is deterministic.
func FromValue(v any) *Node {
	root := NewContainer()
	appendValue(root, "", v)
	return root
}

// AppendInto renders a value directly into an existing group: object
// keys become the group's immediate children instead of nesting under an
// anonymous "{}" row. Used for panel sections that already carry the
// field name as their label.
func AppendInto(parent *Node, v any) {
	if obj, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendValue(parent, k, obj[k])
		}
		return
	}
	appendValue(parent, "", v)
}

func appendValue(parent *Node, label string, v any) {
	switch val := v.(type) {
	case map[string]any:
		group := NewGroup(groupLabel(label, "{}"))
		parent.Append(group)
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendValue(group, k, val[k])
		}
	case []any:
		group := NewGroup(groupLabel(label, "[]"))
		parent.Append(group)
		for i, item := range val {
			appendValue(group, strconv.Itoa(i), item)
		}
	default:
		parent.Append(NewText(leafText(label, scalarText(v))))
	}
}

func groupLabel(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

func leafText(label, value string) string {
	if label == "" {
		return value
	}
	return label + ": " + value
}

// scalarText renders a scalar the way the JSON tree view shows it.
// Strings stay unquoted so full-text search sees the literal content.
func scalarText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}

// Package doctree models the rendered content tree the inspection panel
// displays: a container holding nested expandable groups with text-bearing
// leaves, plus the annotation primitives the highlight engine needs —
// wrap a text range, unwrap an annotation, merge adjacent text runs,
// expand collapsed ancestors. Any renderer that walks this tree gets
// highlighting for free; the tree holds no renderer-specific knowledge.
package doctree

// Kind is the structural role of a node.
type Kind int

const (
	// Container is the tree root handed to the highlight engine.
	Container Kind = iota
	// Group is an expandable section (object key, array, panel header).
	Group
	// Text is a text-bearing leaf.
	Text
	// Annotation wraps a matched text fragment. Annotations are created
	// and destroyed by the highlight engine only.
	Annotation
)

// Node is one node of the rendered tree. Children order is document order.
type Node struct {
	Kind     Kind
	Label    string // group heading; empty for other kinds
	Text     string // leaf or annotation content
	Expanded bool   // groups only
	Active   bool   // annotations only; the navigator's current match
	Inline   bool   // leaf continues the previous sibling's visual line

	parent   *Node
	Children []*Node
}

// NewContainer returns an empty tree root.
func NewContainer() *Node {
	return &Node{Kind: Container, Expanded: true}
}

// NewGroup returns a collapsed expandable group.
func NewGroup(label string) *Node {
	return &Node{Kind: Group, Label: label}
}

// NewText returns a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: Text, Text: text}
}

// Append adds children in document order and wires their parent pointers.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Parent returns the node's parent, nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Walk visits every node in document order. Returning false from fn stops
// the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// TextLeaves returns the text-bearing leaves in document order.
// Annotations are not included: callers clear highlights before
// enumerating, so a searched tree contains only plain leaves.
func (n *Node) TextLeaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == Text {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// Annotations returns the live annotation set in document order. This
// ordered list is the match set — annotations have no identity beyond
// their position in it.
func (n *Node) Annotations() []*Node {
	var anns []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == Annotation {
			anns = append(anns, node)
		}
		return true
	})
	return anns
}

// PlainText concatenates the text content of the subtree in document
// order, annotations included. Invariant under highlight insertion and
// removal: wrap then unwrap must round-trip byte-for-byte.
func (n *Node) PlainText() string {
	var out []byte
	n.Walk(func(node *Node) bool {
		if node.Kind == Text || node.Kind == Annotation {
			out = append(out, node.Text...)
		}
		return true
	})
	return string(out)
}

// ExpandAncestors marks every collapsed group between the node and the
// root as expanded, so the node is visible without manual interaction.
func (n *Node) ExpandAncestors() {
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind == Group {
			p.Expanded = true
		}
	}
}

// Span is a half-open byte range [Start, End) inside a leaf's text.
type Span struct {
	Start, End int
}

// WrapSpans splits a text leaf on the given non-overlapping, ascending
// spans and wraps each span in an annotation node, preserving all
// non-matching text verbatim and node order. It returns the created
// annotations in document order. Spans outside the text are ignored.
func WrapSpans(leaf *Node, spans []Span) []*Node {
	if leaf == nil || leaf.Kind != Text || leaf.parent == nil || len(spans) == 0 {
		return nil
	}

	parent := leaf.parent
	text := leaf.Text

	var segments []*Node
	var created []*Node
	cursor := 0
	for _, sp := range spans {
		if sp.Start < cursor || sp.End > len(text) || sp.Start >= sp.End {
			continue
		}
		if sp.Start > cursor {
			segments = append(segments, NewText(text[cursor:sp.Start]))
		}
		ann := &Node{Kind: Annotation, Text: text[sp.Start:sp.End]}
		segments = append(segments, ann)
		created = append(created, ann)
		cursor = sp.End
	}
	if len(created) == 0 {
		return nil
	}
	if cursor < len(text) {
		segments = append(segments, NewText(text[cursor:]))
	}

	// The first segment takes the split leaf's place on its line; the rest
	// are continuations of that same line.
	segments[0].Inline = leaf.Inline
	for _, seg := range segments[1:] {
		seg.Inline = true
	}

	parent.replaceChild(leaf, segments)
	return created
}

// Unwrap replaces an annotation with a plain text node carrying the same
// content. The caller merges adjacent runs afterwards (see MergeTextRuns).
func Unwrap(ann *Node) {
	if ann == nil || ann.Kind != Annotation || ann.parent == nil {
		return
	}
	repl := NewText(ann.Text)
	repl.Inline = ann.Inline
	ann.parent.replaceChild(ann, []*Node{repl})
}

// MergeTextRuns collapses split text runs throughout the subtree so no
// continuation fragments remain after annotations are removed. Distinct
// sibling leaves are left alone; only inline continuations merge back
// into the leaf they were split from. Empty leaves left behind by
// edge-of-text splits are dropped.
func (n *Node) MergeTextRuns() {
	if n == nil {
		return
	}
	merged := n.Children[:0]
	for _, c := range n.Children {
		c.MergeTextRuns()
		if c.Kind == Text {
			if c.Text == "" && c.Inline {
				continue
			}
			if c.Inline && len(merged) > 0 && merged[len(merged)-1].Kind == Text {
				merged[len(merged)-1].Text += c.Text
				continue
			}
		}
		merged = append(merged, c)
	}
	// Clear the tail so dropped nodes don't linger in the backing array.
	for i := len(merged); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = merged
}

func (n *Node) replaceChild(old *Node, repl []*Node) {
	for i, c := range n.Children {
		if c != old {
			continue
		}
		for _, r := range repl {
			r.parent = n
		}
		children := make([]*Node, 0, len(n.Children)-1+len(repl))
		children = append(children, n.Children[:i]...)
		children = append(children, repl...)
		children = append(children, n.Children[i+1:]...)
		n.Children = children
		old.parent = nil
		return
	}
}

package doc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Attrs holds the per-kind attributes of a node. Only the fields relevant to
// the node's kind are meaningful; the rest stay at their zero value.
type Attrs struct {
	Level    int    // heading, 1..6
	Start    int    // orderedList, first item number
	Checked  bool   // taskItem
	Language string // codeBlock
	Src      string // image
	Alt      string // image
	Title    string // image
}

// Node is one immutable vertex of a document tree. Nodes are created through
// the constructors in this package and never modified afterwards, so they may
// be shared freely between document versions.
type Node struct {
	kind     Kind
	attrs    Attrs
	text     string
	marks    MarkSet
	children []*Node
	id       string
	size     int
}

// NewID returns a fresh node identity.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// New builds a non-text node of the given kind. It panics if kind is text or
// if the children violate the kind's content rules. Inline children are
// normalized: empty text nodes are dropped and adjacent text nodes with equal
// marks are merged. Image nodes receive a fresh identity.
func New(kind Kind, attrs Attrs, children ...*Node) *Node {
	n, err := build(kind, attrs, "", children)
	if err != nil {
		panic(err)
	}
	return n
}

// NewText builds a text node. It panics on empty text; use Texts when the
// value may be empty.
func NewText(value string, marks ...Mark) *Node {
	if value == "" {
		panic("doc: empty text node")
	}
	return &Node{
		kind:  KindText,
		text:  value,
		marks: NewMarkSet(marks...),
		size:  utf8.RuneCountInString(value),
	}
}

// Texts returns value as a single text node, or no nodes when value is empty.
func Texts(value string, marks ...Mark) []*Node {
	if value == "" {
		return nil
	}
	return []*Node{NewText(value, marks...)}
}

// CheckContent reports whether children is valid content for a node of the
// given kind.
func CheckContent(kind Kind, children []*Node) error {
	if kind.IsLeaf() && len(children) > 0 {
		return fmt.Errorf("doc: %s cannot have children", kind)
	}
	for _, c := range children {
		if c == nil {
			return fmt.Errorf("doc: nil child in %s", kind)
		}
		if !kind.Allows(c.kind) {
			return fmt.Errorf("doc: %s cannot contain %s", kind, c.kind)
		}
		if kind == KindCodeBlock && len(c.marks) > 0 {
			return fmt.Errorf("doc: codeBlock text cannot carry marks")
		}
	}
	return nil
}

func build(kind Kind, attrs Attrs, id string, children []*Node) (*Node, error) {
	if kind == KindText {
		return nil, fmt.Errorf("doc: text nodes are built with NewText")
	}
	if err := CheckContent(kind, children); err != nil {
		return nil, err
	}
	if kind == KindImage && id == "" {
		id = NewID()
	}
	n := &Node{kind: kind, attrs: attrs, id: id}
	if len(children) > 0 {
		n.children = normalize(children)
	}
	if kind.IsLeaf() {
		n.size = 1
		return n, nil
	}
	n.size = 2
	for _, c := range n.children {
		n.size += c.size
	}
	return n, nil
}

// normalize drops empty text and merges adjacent text nodes with equal marks.
func normalize(children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		if c.kind == KindText && c.text == "" {
			continue
		}
		if last := len(out) - 1; last >= 0 && c.kind == KindText && out[last].kind == KindText &&
			out[last].marks.Equal(c.marks) {
			merged := *out[last]
			merged.text += c.text
			merged.size += c.size
			out[last] = &merged
			continue
		}
		out = append(out, c)
	}
	return out
}

// Kind returns the node's type.
func (n *Node) Kind() Kind { return n.kind }

// Attrs returns a copy of the node's attributes.
func (n *Node) Attrs() Attrs { return n.attrs }

// Text returns the value of a text node, or "" for other kinds.
func (n *Node) Text() string { return n.text }

// Marks returns the marks of a text node.
func (n *Node) Marks() MarkSet { return n.marks }

// ID returns the node identity. Only image nodes carry one.
func (n *Node) ID() string { return n.id }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Size returns the number of positions the node occupies in its parent.
func (n *Node) Size() int { return n.size }

// ContentSize returns the number of positions between the node's opening and
// closing boundaries. For the root this is the range of valid positions.
func (n *Node) ContentSize() int {
	if n.kind.IsLeaf() {
		return 0
	}
	return n.size - 2
}

// IsTextblock reports whether the node holds inline content directly.
func (n *Node) IsTextblock() bool { return n.kind.IsTextblock() }

// TextContent concatenates the values of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.kind == KindText {
		return n.text
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, c := range n.children {
		if c.kind == KindText {
			b.WriteString(c.text)
			continue
		}
		c.writeText(b)
	}
}

// ChildOffset returns the content offset at which the i-th child starts.
func (n *Node) ChildOffset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += n.children[j].size
	}
	return off
}

// WithAttrs returns a copy of the node with new attributes. Kind, children
// and identity are preserved.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	c := *n
	c.attrs = attrs
	return &c
}

// WithMarks returns a copy of a text node carrying marks.
func (n *Node) WithMarks(marks MarkSet) *Node {
	c := *n
	c.marks = marks
	return &c
}

// WithChildren returns a copy of the node holding children, or an error when
// the children violate the content rules. Identity is preserved.
func (n *Node) WithChildren(children []*Node) (*Node, error) {
	return build(n.kind, n.attrs, n.id, children)
}

// WithKind returns a node of another kind holding the same attributes and
// children, or an error when the children are not valid for kind.
func (n *Node) WithKind(kind Kind) (*Node, error) {
	return build(kind, n.attrs, n.id, n.children)
}

// Cut returns the children covering the content range [from, to), splitting
// text nodes at the boundaries. Non-text children are returned whole; callers
// pass ranges whose ends fall on child boundaries or inside text.
func (n *Node) Cut(from, to int) []*Node {
	var out []*Node
	pos := 0
	for _, c := range n.children {
		end := pos + c.size
		if end > from && pos < to {
			if c.kind == KindText && (pos < from || end > to) {
				out = append(out, c.sliceText(max(from, pos)-pos, min(to, end)-pos))
			} else {
				out = append(out, c)
			}
		}
		pos = end
		if pos >= to {
			break
		}
	}
	return out
}

// Splice returns a copy of the node whose content range [from, to) is
// replaced by insert.
func (n *Node) Splice(from, to int, insert []*Node) (*Node, error) {
	if from < 0 || to > n.ContentSize() || from > to {
		return nil, fmt.Errorf("doc: splice range %d..%d outside %s content of size %d",
			from, to, n.kind, n.ContentSize())
	}
	children := append(n.Cut(0, from), insert...)
	children = append(children, n.Cut(to, n.ContentSize())...)
	return n.WithChildren(children)
}

func (n *Node) sliceText(from, to int) *Node {
	r := []rune(n.text)
	c := *n
	c.text = string(r[from:to])
	c.size = to - from
	return &c
}

// Equal reports whether two trees are structurally equal. Identity is ignored.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.kind != o.kind || n.attrs != o.attrs || n.text != o.text || !n.marks.Equal(o.marks) ||
		len(n.children) != len(o.children) {
		return false
	}
	for i := range n.children {
		if !n.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// String renders the tree in a compact debugging form, e.g.
// doc(paragraph("a", bold"b")).
func (n *Node) String() string {
	var b strings.Builder
	n.writeDebug(&b)
	return b.String()
}

func (n *Node) writeDebug(b *strings.Builder) {
	if n.kind == KindText {
		for _, m := range n.marks {
			b.WriteString(m.Type.String())
		}
		fmt.Fprintf(b, "%q", n.text)
		return
	}
	b.WriteString(n.kind.String())
	if n.kind == KindImage {
		fmt.Fprintf(b, "[%q %q %q]", n.attrs.Alt, n.attrs.Src, n.attrs.Title)
		return
	}
	if n.kind.IsLeaf() {
		return
	}
	b.WriteByte('(')
	for i, c := range n.children {
		if i > 0 {
			b.WriteString(", ")
		}
		c.writeDebug(b)
	}
	b.WriteByte(')')
}

// Descendants calls fn for every node below n in document order with the
// position directly before it. Returning false skips the node's children.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.descend(0, fn)
}

func (n *Node) descend(start int, fn func(*Node, int, *Node, int) bool) {
	pos := start
	for i, c := range n.children {
		if fn(c, pos, n, i) && !c.kind.IsLeaf() {
			c.descend(pos+1, fn)
		}
		pos += c.size
	}
}

// FindByID returns the node with the given identity and the position before
// it.
func (n *Node) FindByID(id string) (*Node, int, bool) {
	var (
		found *Node
		at    int
	)
	if id == "" {
		return nil, 0, false
	}
	n.Descendants(func(c *Node, pos int, _ *Node, _ int) bool {
		if found != nil {
			return false
		}
		if c.id == id {
			found, at = c, pos
			return false
		}
		return true
	})
	return found, at, found != nil
}

// NodeAt returns the node that starts directly after pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	rp, err := n.Resolve(pos)
	if err != nil {
		return nil
	}
	return rp.NodeAfter()
}

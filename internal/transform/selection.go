package transform

import (
	"fmt"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Selection is the user's selection in a document version.
type Selection interface {
	From() int
	To() int
	Empty() bool
	// Map returns the selection in the coordinates of the document produced
	// by m.
	Map(m Mappable) Selection
	String() string
}

// TextSelection is a caret (Anchor == Head) or a text range.
type TextSelection struct {
	Anchor, Head int
}

// Caret returns a collapsed selection at pos.
func Caret(pos int) TextSelection { return TextSelection{Anchor: pos, Head: pos} }

func (s TextSelection) From() int   { return min(s.Anchor, s.Head) }
func (s TextSelection) To() int     { return max(s.Anchor, s.Head) }
func (s TextSelection) Empty() bool { return s.Anchor == s.Head }

func (s TextSelection) Map(m Mappable) Selection {
	return TextSelection{Anchor: m.Map(s.Anchor, BiasAfter), Head: m.Map(s.Head, BiasAfter)}
}

func (s TextSelection) String() string {
	if s.Empty() {
		return fmt.Sprintf("caret(%d)", s.Head)
	}
	return fmt.Sprintf("text(%d..%d)", s.Anchor, s.Head)
}

// NodeSelection selects the single node directly after Pos.
type NodeSelection struct {
	Pos int
}

func (s NodeSelection) From() int   { return s.Pos }
func (s NodeSelection) To() int     { return s.Pos + 1 }
func (s NodeSelection) Empty() bool { return false }

// Map keeps the node selected while it survives; a deleted node collapses the
// selection to a caret where it was.
func (s NodeSelection) Map(m Mappable) Selection {
	r := m.MapResult(s.Pos, BiasAfter)
	if r.Deleted {
		return Caret(r.Pos)
	}
	return NodeSelection{Pos: r.Pos}
}

func (s NodeSelection) String() string { return fmt.Sprintf("node(%d)", s.Pos) }

// Validate fits sel to d: positions are clamped into range and a node
// selection that no longer points at a selectable node becomes a caret.
func Validate(d *doc.Node, sel Selection) Selection {
	size := d.ContentSize()
	switch s := sel.(type) {
	case NodeSelection:
		if n := d.NodeAt(s.Pos); n != nil && n.Kind() != doc.KindText {
			return s
		}
		return Near(d, clamp(s.Pos, 0, size), BiasAfter)
	case TextSelection:
		return TextSelection{Anchor: clamp(s.Anchor, 0, size), Head: clamp(s.Head, 0, size)}
	case nil:
		return Near(d, 0, BiasAfter)
	}
	return sel
}

// Near returns a caret in the textblock closest to pos, searching in the
// direction of bias first. Positions already inside a textblock are kept.
// Documents without textblocks get a caret at pos.
func Near(d *doc.Node, pos int, bias Bias) TextSelection {
	pos = clamp(pos, 0, d.ContentSize())
	if rp, err := d.Resolve(pos); err == nil && rp.Parent().IsTextblock() {
		return Caret(pos)
	}
	var before, after = -1, -1
	d.Descendants(func(n *doc.Node, at int, _ *doc.Node, _ int) bool {
		if !n.IsTextblock() {
			return true
		}
		start, end := at+1, at+1+n.ContentSize()
		if start >= pos && after < 0 {
			after = start
		}
		if end <= pos {
			before = end
		}
		return false
	})
	first, second := after, before
	if bias < 0 {
		first, second = before, after
	}
	switch {
	case first >= 0:
		return Caret(first)
	case second >= 0:
		return Caret(second)
	}
	return Caret(pos)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

package doc

import (
	"errors"
	"fmt"
)

// ErrPositionOutOfRange is returned when a position lies outside the root's
// content.
var ErrPositionOutOfRange = errors.New("position out of range")

type pathEntry struct {
	node  *Node
	index int
	start int
}

// ResolvedPos describes the context of a position: the chain of ancestors
// from the root down to the innermost node whose content contains it, and
// for each ancestor the index of the child the position falls in.
type ResolvedPos struct {
	Pos        int
	path       []pathEntry
	textOffset int
}

// Resolve locates pos in the tree rooted at n.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.ContentSize() {
		return nil, fmt.Errorf("resolve %d in document of size %d: %w", pos, n.ContentSize(), ErrPositionOutOfRange)
	}
	rp := &ResolvedPos{Pos: pos}
	node, start := n, 0
	for {
		index, offset := node.findIndex(pos - start)
		rp.path = append(rp.path, pathEntry{node: node, index: index, start: start})
		rem := pos - start - offset
		if rem == 0 {
			break
		}
		child := node.children[index]
		if child.kind == KindText {
			rp.textOffset = rem
			break
		}
		node, start = child, start+offset+1
	}
	return rp, nil
}

// findIndex returns the index of the child containing content offset off,
// and the offset at which that child starts. An offset on a boundary maps to
// the child after it.
func (n *Node) findIndex(off int) (int, int) {
	pos := 0
	for i, c := range n.children {
		end := pos + c.size
		if end > off {
			return i, pos
		}
		pos = end
	}
	return len(n.children), pos
}

// Depth is the number of levels below the root; 0 means the position sits
// directly in the root's content.
func (rp *ResolvedPos) Depth() int { return len(rp.path) - 1 }

func (rp *ResolvedPos) depth(d int) int {
	if d < 0 {
		return rp.Depth() + d
	}
	return d
}

// Node returns the ancestor at depth d. Negative values count up from the
// innermost node, so Node(-1) is the parent's parent.
func (rp *ResolvedPos) Node(d int) *Node { return rp.path[rp.depth(d)].node }

// Parent returns the innermost node containing the position.
func (rp *ResolvedPos) Parent() *Node { return rp.path[len(rp.path)-1].node }

// Index returns the index of the child the position falls in at depth d.
func (rp *ResolvedPos) Index(d int) int { return rp.path[rp.depth(d)].index }

// Start returns the position where the content of the depth-d ancestor
// begins.
func (rp *ResolvedPos) Start(d int) int { return rp.path[rp.depth(d)].start }

// End returns the position where the content of the depth-d ancestor ends.
func (rp *ResolvedPos) End(d int) int {
	return rp.Start(d) + rp.Node(d).ContentSize()
}

// Before returns the position directly before the depth-d ancestor. d must
// be at least 1.
func (rp *ResolvedPos) Before(d int) int {
	d = rp.depth(d)
	if d < 1 {
		panic("doc: there is no position before the root")
	}
	return rp.path[d].start - 1
}

// After returns the position directly after the depth-d ancestor. d must be
// at least 1.
func (rp *ResolvedPos) After(d int) int {
	return rp.Before(d) + rp.Node(d).Size()
}

// ParentOffset is the position's offset into its parent's content.
func (rp *ResolvedPos) ParentOffset() int { return rp.Pos - rp.Start(rp.Depth()) }

// TextOffset is the offset into the text node the position falls in, or 0
// when it sits on a child boundary.
func (rp *ResolvedPos) TextOffset() int { return rp.textOffset }

// NodeAfter returns the node directly after the position. Inside a text node
// it returns the remainder of that text.
func (rp *ResolvedPos) NodeAfter() *Node {
	parent, index := rp.Parent(), rp.Index(rp.Depth())
	if index >= parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if rp.textOffset > 0 {
		return child.sliceText(rp.textOffset, child.size)
	}
	return child
}

// NodeBefore returns the node directly before the position. Inside a text
// node it returns the part of that text before the position.
func (rp *ResolvedPos) NodeBefore() *Node {
	parent, index := rp.Parent(), rp.Index(rp.Depth())
	if rp.textOffset > 0 {
		return parent.Child(index).sliceText(0, rp.textOffset)
	}
	if index == 0 {
		return nil
	}
	return parent.Child(index - 1)
}

// Marks returns the marks in effect at the position: those of the text it is
// in, or of the text node directly before it.
func (rp *ResolvedPos) Marks() MarkSet {
	if before := rp.NodeBefore(); before != nil && before.kind == KindText {
		return before.marks
	}
	return nil
}

// SharedDepth returns the depth of the deepest ancestor whose content holds
// both rp and pos.
func (rp *ResolvedPos) SharedDepth(pos int) int {
	for d := rp.Depth(); d > 0; d-- {
		if rp.Start(d) <= pos && rp.End(d) >= pos {
			return d
		}
	}
	return 0
}

// Rebuild returns a new root in which the depth-d ancestor of the position is
// replaced by replacement. Every node on the path above it is copied; all
// other nodes are shared with the original tree.
func (rp *ResolvedPos) Rebuild(d int, replacement *Node) (*Node, error) {
	d = rp.depth(d)
	cur := replacement
	for i := d - 1; i >= 0; i-- {
		parent := rp.path[i].node
		children := parent.Children()
		children[rp.path[i].index] = cur
		next, err := parent.WithChildren(children)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

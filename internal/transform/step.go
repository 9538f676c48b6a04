package transform

import (
	"errors"
	"fmt"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Sentinel reasons carried by InvalidStepError.
var (
	ErrNotTextblock   = errors.New("position is not inside a textblock")
	ErrRangeMismatch  = errors.New("range endpoints are not in the same parent")
	ErrInvertedRange  = errors.New("range start is after its end")
	ErrNoNode         = errors.New("no node directly after position")
	ErrInvalidContent = errors.New("content not allowed here")
	ErrCodeMarks      = errors.New("code blocks cannot carry marks")
	ErrSplitDepth     = errors.New("split is deeper than the position's nesting")
)

// Step is one primitive edit. The set of steps is closed.
type Step interface {
	apply(d *doc.Node) (*doc.Node, StepMap, error)
	String() string
}

// InsertText inserts Text carrying Marks at Pos, which must lie inside a
// textblock.
type InsertText struct {
	Pos   int
	Text  string
	Marks doc.MarkSet
}

func (s InsertText) String() string { return fmt.Sprintf("insertText(%d, %q)", s.Pos, s.Text) }

func (s InsertText) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	rp, err := d.Resolve(s.Pos)
	if err != nil {
		return nil, StepMap{}, err
	}
	parent := rp.Parent()
	if !parent.IsTextblock() {
		return nil, StepMap{}, ErrNotTextblock
	}
	if s.Text == "" {
		return d, StepMap{}, nil
	}
	if parent.Kind() == doc.KindCodeBlock && len(s.Marks) > 0 {
		return nil, StepMap{}, ErrCodeMarks
	}
	inserted := doc.Texts(s.Text, s.Marks...)
	root, err := spliceAt(rp, rp, inserted)
	if err != nil {
		return nil, StepMap{}, err
	}
	return root, replaced(s.Pos, 0, inserted[0].Size()), nil
}

// DeleteRange removes the content between From and To, which must share a
// parent.
type DeleteRange struct {
	From, To int
}

func (s DeleteRange) String() string { return fmt.Sprintf("deleteRange(%d, %d)", s.From, s.To) }

func (s DeleteRange) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	return ReplaceRange{From: s.From, To: s.To}.apply(d)
}

// ReplaceRange replaces the content between From and To with Nodes. Both
// ends must share a parent whose content rules accept the result.
type ReplaceRange struct {
	From, To int
	Nodes    []*doc.Node
}

func (s ReplaceRange) String() string {
	return fmt.Sprintf("replaceRange(%d, %d, %d nodes)", s.From, s.To, len(s.Nodes))
}

func (s ReplaceRange) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	from, to, err := resolveRange(d, s.From, s.To)
	if err != nil {
		return nil, StepMap{}, err
	}
	if s.From == s.To && len(s.Nodes) == 0 {
		return d, StepMap{}, nil
	}
	root, err := spliceAt(from, to, s.Nodes)
	if err != nil {
		return nil, StepMap{}, err
	}
	size := 0
	for _, n := range s.Nodes {
		size += n.Size()
	}
	return root, replaced(s.From, s.To-s.From, size), nil
}

// SetNodeAttributes replaces the attributes of the non-text node directly
// after Pos. Kind, children and identity are kept.
type SetNodeAttributes struct {
	Pos   int
	Attrs doc.Attrs
}

func (s SetNodeAttributes) String() string { return fmt.Sprintf("setNodeAttributes(%d)", s.Pos) }

func (s SetNodeAttributes) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	rp, err := d.Resolve(s.Pos)
	if err != nil {
		return nil, StepMap{}, err
	}
	target := rp.NodeAfter()
	if target == nil || target.Kind() == doc.KindText {
		return nil, StepMap{}, ErrNoNode
	}
	if err := checkAttrs(target.Kind(), s.Attrs); err != nil {
		return nil, StepMap{}, err
	}
	parent := rp.Parent()
	off := rp.ParentOffset()
	updated, err := parent.Splice(off, off+target.Size(), []*doc.Node{target.WithAttrs(s.Attrs)})
	if err != nil {
		return nil, StepMap{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	root, err := rp.Rebuild(rp.Depth(), updated)
	if err != nil {
		return nil, StepMap{}, err
	}
	return root, StepMap{}, nil
}

// SplitBlock splits the textblock around Pos in two. A Depth above 1 also
// splits the enclosing nodes, Depth levels in all counting the textblock.
// Types sets the kind and attributes of the new right-hand nodes, innermost
// first; nodes without an entry copy the node they were split from.
type SplitBlock struct {
	Pos   int
	Depth int
	Types []NodeType
}

// NodeType is a node kind together with its attributes.
type NodeType struct {
	Kind  doc.Kind
	Attrs doc.Attrs
}

func (s SplitBlock) String() string { return fmt.Sprintf("splitBlock(%d, %d)", s.Pos, s.depth()) }

func (s SplitBlock) depth() int { return max(s.Depth, 1) }

func (s SplitBlock) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	rp, err := d.Resolve(s.Pos)
	if err != nil {
		return nil, StepMap{}, err
	}
	if !rp.Parent().IsTextblock() {
		return nil, StepMap{}, ErrNotTextblock
	}
	inner := rp.Depth()
	top := inner - s.depth() + 1
	if top < 1 {
		return nil, StepMap{}, ErrSplitDepth
	}
	var left, right *doc.Node
	for k := inner; k >= top; k-- {
		node := rp.Node(k)
		var leftKids, rightKids []*doc.Node
		if k == inner {
			off := rp.ParentOffset()
			leftKids, rightKids = node.Cut(0, off), node.Cut(off, node.ContentSize())
		} else {
			idx, kids := rp.Index(k), node.Children()
			leftKids = append(kids[:idx:idx], left)
			rightKids = append([]*doc.Node{right}, kids[idx+1:]...)
		}
		typ := NodeType{Kind: node.Kind(), Attrs: node.Attrs()}
		if i := inner - k; i < len(s.Types) {
			typ = s.Types[i]
		}
		if left, err = node.WithChildren(leftKids); err != nil {
			return nil, StepMap{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		if err := checkAttrs(typ.Kind, typ.Attrs); err != nil {
			return nil, StepMap{}, err
		}
		if err := doc.CheckContent(typ.Kind, rightKids); err != nil || typ.Kind == doc.KindText {
			return nil, StepMap{}, fmt.Errorf("%w: split into %s", ErrInvalidContent, typ.Kind)
		}
		right = doc.New(typ.Kind, typ.Attrs, rightKids...)
	}
	parent, idx := rp.Node(top-1), rp.Index(top-1)
	off := parent.ChildOffset(idx)
	updated, err := parent.Splice(off, off+rp.Node(top).Size(), []*doc.Node{left, right})
	if err != nil {
		return nil, StepMap{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	root, err := rp.Rebuild(top-1, updated)
	if err != nil {
		return nil, StepMap{}, err
	}
	return root, replaced(s.Pos, 0, 2*s.depth()), nil
}

// checkAttrs rejects attributes the node kind cannot carry.
func checkAttrs(kind doc.Kind, attrs doc.Attrs) error {
	switch kind {
	case doc.KindHeading:
		if attrs.Level < 1 || attrs.Level > 6 {
			return fmt.Errorf("%w: heading level %d", ErrInvalidContent, attrs.Level)
		}
	case doc.KindOrderedList:
		if attrs.Start < 0 {
			return fmt.Errorf("%w: ordered list start %d", ErrInvalidContent, attrs.Start)
		}
	}
	return nil
}

// AddMark adds Mark to all text between From and To inside one textblock.
type AddMark struct {
	From, To int
	Mark     doc.Mark
}

func (s AddMark) String() string {
	return fmt.Sprintf("addMark(%d, %d, %s)", s.From, s.To, s.Mark.Type)
}

func (s AddMark) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	return mapMarks(d, s.From, s.To, func(m doc.MarkSet) doc.MarkSet { return m.Add(s.Mark) })
}

// RemoveMark removes marks of Mark's type from the text between From and To
// inside one textblock.
type RemoveMark struct {
	From, To int
	Mark     doc.Mark
}

func (s RemoveMark) String() string {
	return fmt.Sprintf("removeMark(%d, %d, %s)", s.From, s.To, s.Mark.Type)
}

func (s RemoveMark) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	return mapMarks(d, s.From, s.To, func(m doc.MarkSet) doc.MarkSet { return m.Remove(s.Mark.Type) })
}

// SetSelection requests the selection the transaction should leave behind.
// Later steps of the same transaction map it.
type SetSelection struct {
	Selection Selection
}

func (s SetSelection) String() string { return fmt.Sprintf("setSelection(%s)", s.Selection) }

func (s SetSelection) apply(d *doc.Node) (*doc.Node, StepMap, error) {
	if s.Selection == nil {
		return nil, StepMap{}, errors.New("nil selection")
	}
	if s.Selection.From() < 0 || s.Selection.To() > d.ContentSize() {
		return nil, StepMap{}, doc.ErrPositionOutOfRange
	}
	return d, StepMap{}, nil
}

func resolveRange(d *doc.Node, from, to int) (*doc.ResolvedPos, *doc.ResolvedPos, error) {
	if from > to {
		return nil, nil, ErrInvertedRange
	}
	rpFrom, err := d.Resolve(from)
	if err != nil {
		return nil, nil, err
	}
	rpTo, err := d.Resolve(to)
	if err != nil {
		return nil, nil, err
	}
	if rpFrom.Depth() != rpTo.Depth() || rpFrom.Start(rpFrom.Depth()) != rpTo.Start(rpTo.Depth()) {
		return nil, nil, ErrRangeMismatch
	}
	return rpFrom, rpTo, nil
}

func spliceAt(from, to *doc.ResolvedPos, nodes []*doc.Node) (*doc.Node, error) {
	updated, err := from.Parent().Splice(from.ParentOffset(), to.ParentOffset(), nodes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return from.Rebuild(from.Depth(), updated)
}

func mapMarks(d *doc.Node, from, to int, fn func(doc.MarkSet) doc.MarkSet) (*doc.Node, StepMap, error) {
	rpFrom, rpTo, err := resolveRange(d, from, to)
	if err != nil {
		return nil, StepMap{}, err
	}
	parent := rpFrom.Parent()
	if !parent.IsTextblock() {
		return nil, StepMap{}, ErrNotTextblock
	}
	if parent.Kind() == doc.KindCodeBlock {
		return nil, StepMap{}, ErrCodeMarks
	}
	if from == to {
		return d, StepMap{}, nil
	}
	var restyled []*doc.Node
	for _, n := range parent.Cut(rpFrom.ParentOffset(), rpTo.ParentOffset()) {
		if n.Kind() == doc.KindText {
			n = n.WithMarks(fn(n.Marks()))
		}
		restyled = append(restyled, n)
	}
	root, err := spliceAt(rpFrom, rpTo, restyled)
	if err != nil {
		return nil, StepMap{}, err
	}
	return root, StepMap{}, nil
}

package doc

import (
	"fmt"
	"sort"
)

// MarkType identifies an inline style. The numeric order is the rank used to
// keep mark sets sorted and to nest delimiters during serialization: link is
// outermost, code innermost.
type MarkType uint8

const (
	MarkLink MarkType = iota
	MarkBold
	MarkItalic
	MarkCode
)

// String returns the schema name of the mark type.
func (t MarkType) String() string {
	switch t {
	case MarkLink:
		return "link"
	case MarkBold:
		return "bold"
	case MarkItalic:
		return "italic"
	case MarkCode:
		return "code"
	}
	return fmt.Sprintf("MarkType(%d)", t)
}

// Mark is a style annotation attached to a run of text.
type Mark struct {
	Type MarkType
	Href string // link only
}

// Bold returns the bold mark.
func Bold() Mark { return Mark{Type: MarkBold} }

// Italic returns the italic mark.
func Italic() Mark { return Mark{Type: MarkItalic} }

// Code returns the inline code mark.
func Code() Mark { return Mark{Type: MarkCode} }

// Link returns a link mark pointing at href.
func Link(href string) Mark { return Mark{Type: MarkLink, Href: href} }

// MarkSet is a set of marks holding at most one mark per type, sorted by
// type rank. The zero value is the empty set. Methods never modify the
// receiver.
type MarkSet []Mark

// NewMarkSet builds a set from marks. Later marks of the same type win.
func NewMarkSet(marks ...Mark) MarkSet {
	var s MarkSet
	for _, m := range marks {
		s = s.Add(m)
	}
	return s
}

// Add returns a set containing m, replacing any mark of the same type.
func (s MarkSet) Add(m Mark) MarkSet {
	out := make(MarkSet, 0, len(s)+1)
	for _, existing := range s {
		if existing.Type != m.Type {
			out = append(out, existing)
		}
	}
	out = append(out, m)
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Remove returns a set without marks of type t.
func (s MarkSet) Remove(t MarkType) MarkSet {
	if !s.Has(t) {
		return s
	}
	out := make(MarkSet, 0, len(s)-1)
	for _, m := range s {
		if m.Type != t {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether the set contains a mark of type t.
func (s MarkSet) Has(t MarkType) bool {
	_, ok := s.Get(t)
	return ok
}

// Get returns the mark of type t, if present.
func (s MarkSet) Get(t MarkType) (Mark, bool) {
	for _, m := range s {
		if m.Type == t {
			return m, true
		}
	}
	return Mark{}, false
}

// Equal reports whether both sets hold the same marks.
func (s MarkSet) Equal(o MarkSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Intersect returns the marks present, with equal attributes, in both sets.
func (s MarkSet) Intersect(o MarkSet) MarkSet {
	var out MarkSet
	for _, m := range s {
		if om, ok := o.Get(m.Type); ok && om == m {
			out = append(out, m)
		}
	}
	return out
}

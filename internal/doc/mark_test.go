package doc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkSet_RankOrder(t *testing.T) {
	s := NewMarkSet(Code(), Italic(), Link("https://x"), Bold())
	require.Equal(t, MarkSet{Link("https://x"), Bold(), Italic(), Code()}, s)
}

func TestMarkSet_AddReplacesSameType(t *testing.T) {
	s := NewMarkSet(Link("a")).Add(Link("b"))
	require.Len(t, s, 1)
	m, ok := s.Get(MarkLink)
	require.True(t, ok)
	require.Equal(t, "b", m.Href)
}

func TestMarkSet_Remove(t *testing.T) {
	s := NewMarkSet(Bold(), Italic())
	require.Equal(t, MarkSet{Italic()}, s.Remove(MarkBold))
	require.Nil(t, MarkSet{Bold()}.Remove(MarkBold))
	require.Len(t, s, 2)
}

func TestMarkSet_Intersect(t *testing.T) {
	a := NewMarkSet(Bold(), Link("a"))
	b := NewMarkSet(Bold(), Link("b"))
	require.Equal(t, MarkSet{Bold()}, a.Intersect(b))
}

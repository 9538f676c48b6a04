package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eykd/tanmark-go/internal/doc"
)

func TestStepMap_Insertion(t *testing.T) {
	m := replaced(5, 0, 3)
	require.Equal(t, 4, m.Map(4, BiasAfter))
	require.Equal(t, 5, m.Map(5, BiasBefore))
	require.Equal(t, 8, m.Map(5, BiasAfter))
	require.Equal(t, 9, m.Map(6, BiasBefore))
}

func TestStepMap_Deletion(t *testing.T) {
	m := replaced(2, 4, 0)
	tests := []struct {
		pos     int
		want    int
		deleted bool
	}{
		{1, 1, false},
		{2, 2, false},
		{3, 2, true},
		{5, 2, true},
		{6, 2, false},
		{9, 5, false},
	}
	for _, tt := range tests {
		r := m.MapResult(tt.pos, BiasAfter)
		require.Equal(t, tt.want, r.Pos, "pos %d", tt.pos)
		require.Equal(t, tt.deleted, r.Deleted, "pos %d", tt.pos)
	}
}

func TestMapping_Composes(t *testing.T) {
	var m Mapping
	m.append(replaced(7, 2, 0))
	m.append(replaced(1, 2, 0))
	require.Equal(t, 5, m.Map(9, BiasAfter))
	require.Equal(t, 1, m.Map(1, BiasAfter))
	r := m.MapResult(8, BiasAfter)
	require.True(t, r.Deleted)
}

func TestNodeSelection_MapDeleted(t *testing.T) {
	m := replaced(3, 3, 0)
	require.Equal(t, NodeSelection{Pos: 3}, NodeSelection{Pos: 3}.Map(m))
	require.Equal(t, Caret(3), NodeSelection{Pos: 4}.Map(m))
}

func TestNear(t *testing.T) {
	d := doc.Doc(doc.Image("a.png", "", ""), doc.Paragraph(doc.Text("ab")), doc.Image("b.png", "", ""))
	require.Equal(t, Caret(2), Near(d, 0, BiasAfter))
	require.Equal(t, Caret(3), Near(d, 3, BiasAfter))
	require.Equal(t, Caret(4), Near(d, 6, BiasBefore))
	require.Equal(t, Caret(4), Near(d, 6, BiasAfter))
	require.Equal(t, Caret(1), Near(doc.Doc(doc.Image("x", "", "")), 1, BiasAfter))
}

package doc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// doc(paragraph("ab"), bulletList(listItem(paragraph("cd"))))
//
//	0 <p> 1 a 2 b 3 </p> 4 <ul> 5 <li> 6 <p> 7 c 8 d 9 </p> 10 </li> 11 </ul> 12
func sample() *Node {
	return Doc(
		Paragraph(Text("ab")),
		BulletList(ListItem(Paragraph(Text("cd")))),
	)
}

func TestResolve_Depths(t *testing.T) {
	d := sample()
	tests := []struct {
		pos        int
		depth      int
		parent     Kind
		parentOff  int
		textOffset int
	}{
		{0, 0, KindDoc, 0, 0},
		{1, 1, KindParagraph, 0, 0},
		{2, 1, KindParagraph, 1, 1},
		{3, 1, KindParagraph, 2, 0},
		{4, 0, KindDoc, 4, 0},
		{5, 1, KindBulletList, 0, 0},
		{6, 2, KindListItem, 0, 0},
		{8, 3, KindParagraph, 1, 1},
		{12, 0, KindDoc, 12, 0},
	}
	for _, tt := range tests {
		rp, err := d.Resolve(tt.pos)
		require.NoError(t, err)
		require.Equal(t, tt.depth, rp.Depth(), "pos %d", tt.pos)
		require.Equal(t, tt.parent, rp.Parent().Kind(), "pos %d", tt.pos)
		require.Equal(t, tt.parentOff, rp.ParentOffset(), "pos %d", tt.pos)
		require.Equal(t, tt.textOffset, rp.TextOffset(), "pos %d", tt.pos)
	}
}

func TestResolve_BeforeAfter(t *testing.T) {
	rp, err := sample().Resolve(8)
	require.NoError(t, err)
	require.Equal(t, 4, rp.Before(1))
	require.Equal(t, 12, rp.After(1))
	require.Equal(t, 5, rp.Before(2))
	require.Equal(t, 6, rp.Before(3))
	require.Equal(t, 7, rp.Start(3))
	require.Equal(t, 9, rp.End(3))
	require.Equal(t, KindListItem, rp.Node(-1).Kind())
	require.Equal(t, "c", rp.NodeBefore().Text())
	require.Equal(t, "d", rp.NodeAfter().Text())
}

func TestResolve_OutOfRange(t *testing.T) {
	_, err := sample().Resolve(13)
	require.True(t, errors.Is(err, ErrPositionOutOfRange))
	_, err = sample().Resolve(-1)
	require.Error(t, err)
}

func TestResolve_Rebuild(t *testing.T) {
	d := sample()
	rp, err := d.Resolve(8)
	require.NoError(t, err)

	root, err := rp.Rebuild(3, Paragraph(Text("xyz")))
	require.NoError(t, err)
	require.Equal(t, "abxyz", root.TextContent())
	require.Same(t, d.Child(0), root.Child(0))
	require.Equal(t, "abcd", d.TextContent())
}

func TestResolve_Marks(t *testing.T) {
	d := Doc(Paragraph(Text("a"), Text("b", Bold())))
	rp, err := d.Resolve(3)
	require.NoError(t, err)
	require.True(t, rp.Marks().Has(MarkBold))

	rp, err = d.Resolve(2)
	require.NoError(t, err)
	require.Empty(t, rp.Marks())
}

package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eykd/tanmark-go/internal/doc"
)

func TestApply_InsertText(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("ac")))
	res, err := Apply(d, NewTransaction(OriginInput).Add(InsertText{Pos: 2, Text: "b"}))
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, "abc", res.Doc.TextContent())
	require.Equal(t, 1, res.Doc.Child(0).ChildCount())
	require.Equal(t, "ac", d.TextContent())
}

func TestApply_InsertTextWithMarks(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("ab")))
	res, err := Apply(d, NewTransaction(OriginInput).Add(
		InsertText{Pos: 2, Text: "X", Marks: doc.NewMarkSet(doc.Bold())},
	))
	require.NoError(t, err)
	require.Equal(t, `doc(paragraph("a", bold"X", "b"))`, res.Doc.String())
}

func TestApply_StepsSeeEarlierSteps(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("**bold**")))
	tr := NewTransaction(OriginRule).Add(
		DeleteRange{From: 7, To: 9},
		DeleteRange{From: 1, To: 3},
		AddMark{From: 1, To: 5, Mark: doc.Bold()},
		SetSelection{Selection: Caret(5)},
	)
	res, err := Apply(d, tr)
	require.NoError(t, err)
	require.Equal(t, `doc(paragraph(bold"bold"))`, res.Doc.String())
	require.Equal(t, Caret(5), res.Selection)
}

func TestApply_RejectsAtomically(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("abc")), doc.Paragraph(doc.Text("def")))
	tests := []struct {
		name    string
		steps   []Step
		index   int
		wantErr error
	}{
		{
			name:    "out of range",
			steps:   []Step{InsertText{Pos: 1, Text: "x"}, DeleteRange{From: 2, To: 99}},
			index:   1,
			wantErr: doc.ErrPositionOutOfRange,
		},
		{
			name:    "inverted range",
			steps:   []Step{DeleteRange{From: 3, To: 2}},
			wantErr: ErrInvertedRange,
		},
		{
			name:    "across blocks",
			steps:   []Step{DeleteRange{From: 2, To: 7}},
			wantErr: ErrRangeMismatch,
		},
		{
			name:    "insert between blocks",
			steps:   []Step{InsertText{Pos: 5, Text: "x"}},
			wantErr: ErrNotTextblock,
		},
		{
			name:    "paragraph inside paragraph",
			steps:   []Step{ReplaceRange{From: 1, To: 1, Nodes: []*doc.Node{doc.Paragraph()}}},
			wantErr: ErrInvalidContent,
		},
		{
			name:    "attributes on text",
			steps:   []Step{SetNodeAttributes{Pos: 1, Attrs: doc.Attrs{Level: 2}}},
			wantErr: ErrNoNode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Apply(d, NewTransaction(OriginCommand).Add(tt.steps...))
			require.Nil(t, res)
			var stepErr *InvalidStepError
			require.True(t, errors.As(err, &stepErr))
			require.Equal(t, tt.index, stepErr.Index)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, "abcdef", d.TextContent())
		})
	}
}

func TestApply_SetNodeAttributesKeepsIdentity(t *testing.T) {
	img := doc.Image("a.png", "a", "")
	d := doc.Doc(img)
	res, err := Apply(d, NewTransaction(OriginImage).Add(
		SetNodeAttributes{Pos: 0, Attrs: doc.Attrs{Src: "b.png", Alt: "b", Title: "t"}},
	))
	require.NoError(t, err)
	got := res.Doc.Child(0)
	require.Equal(t, img.ID(), got.ID())
	require.Equal(t, "b.png", got.Attrs().Src)
	require.Equal(t, "t", got.Attrs().Title)
}

func TestApply_ReplaceBlock(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("![a](a.png)")))
	res, err := Apply(d, NewTransaction(OriginRule).Add(
		ReplaceRange{From: 0, To: d.ContentSize(), Nodes: []*doc.Node{doc.Image("a.png", "a", "")}},
	))
	require.NoError(t, err)
	require.Equal(t, doc.KindImage, res.Doc.Child(0).Kind())
	require.Equal(t, 1, res.Doc.ContentSize())
}

func TestApply_RemoveMark(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("abc", doc.Bold(), doc.Italic())))
	res, err := Apply(d, NewTransaction(OriginCommand).Add(RemoveMark{From: 2, To: 3, Mark: doc.Bold()}))
	require.NoError(t, err)
	require.Equal(t, `doc(paragraph(bolditalic"a", italic"b", bolditalic"c"))`, res.Doc.String())
}

func TestApply_CodeBlockRefusesMarks(t *testing.T) {
	d := doc.Doc(doc.CodeBlock("go", "x := 1"))
	_, err := Apply(d, NewTransaction(OriginCommand).Add(AddMark{From: 1, To: 3, Mark: doc.Bold()}))
	require.ErrorIs(t, err, ErrCodeMarks)
	_, err = Apply(d, NewTransaction(OriginInput).Add(InsertText{Pos: 1, Text: "y", Marks: doc.NewMarkSet(doc.Code())}))
	require.ErrorIs(t, err, ErrCodeMarks)
}

func TestResult_SelectionFrom(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("ab")))
	res, err := Apply(d, NewTransaction(OriginInput).Add(InsertText{Pos: 2, Text: "x"}))
	require.NoError(t, err)
	require.Equal(t, Caret(3), res.SelectionFrom(Caret(2)))
	require.Equal(t, Caret(4), res.SelectionFrom(Caret(3)))
}

func TestApply_SetNodeAttributesChecksHeadingLevel(t *testing.T) {
	d := doc.Doc(doc.Heading(1, doc.Text("T")))
	for _, level := range []int{0, 7, -1} {
		_, err := Apply(d, NewTransaction(OriginCommand).Add(SetNodeAttributes{Pos: 0, Attrs: doc.Attrs{Level: level}}))
		require.ErrorIs(t, err, ErrInvalidContent, "level %d", level)
	}
	res, err := Apply(d, NewTransaction(OriginCommand).Add(SetNodeAttributes{Pos: 0, Attrs: doc.Attrs{Level: 6}}))
	require.NoError(t, err)
	require.Equal(t, 6, res.Doc.Child(0).Attrs().Level)
}

func TestApply_SplitBlock(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("abcd")))
	res, err := Apply(d, NewTransaction(OriginCommand).Add(SplitBlock{Pos: 3}))
	require.NoError(t, err)
	require.Equal(t, `doc(paragraph("ab"), paragraph("cd"))`, res.Doc.String())

	require.Equal(t, 2, res.Mapping.Map(2, BiasAfter))
	require.Equal(t, 3, res.Mapping.Map(3, BiasBefore))
	require.Equal(t, 5, res.Mapping.Map(3, BiasAfter))
	after := res.Mapping.MapResult(4, BiasAfter)
	require.Equal(t, 6, after.Pos)
	require.False(t, after.Deleted)
}

func TestApply_SplitBlockAcrossListItem(t *testing.T) {
	d := doc.Doc(doc.TaskList(doc.TaskItem(true, doc.Paragraph(doc.Text("ab")), doc.CodeBlock("", "x"))))
	res, err := Apply(d, NewTransaction(OriginCommand).Add(SplitBlock{
		Pos:   4,
		Depth: 2,
		Types: []NodeType{{Kind: doc.KindParagraph}, {Kind: doc.KindTaskItem, Attrs: doc.Attrs{Checked: false}}},
	}))
	require.NoError(t, err)
	require.Equal(t,
		`doc(taskList(taskItem(paragraph("a")), taskItem(paragraph("b"), codeBlock("x"))))`,
		res.Doc.String())
	list := res.Doc.Child(0)
	require.True(t, list.Child(0).Attrs().Checked)
	require.False(t, list.Child(1).Attrs().Checked)
	require.Equal(t, 8, res.Mapping.Map(4, BiasAfter))
}

func TestApply_SplitBlockRejects(t *testing.T) {
	d := doc.Doc(doc.Paragraph(doc.Text("ab")))
	tests := []struct {
		name    string
		step    SplitBlock
		wantErr error
	}{
		{"between blocks", SplitBlock{Pos: 0}, ErrNotTextblock},
		{"deeper than nesting", SplitBlock{Pos: 2, Depth: 2}, ErrSplitDepth},
		{"text in a list", SplitBlock{Pos: 2, Types: []NodeType{{Kind: doc.KindBulletList}}}, ErrInvalidContent},
		{"bad heading level", SplitBlock{Pos: 2, Types: []NodeType{{Kind: doc.KindHeading}}}, ErrInvalidContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Apply(d, NewTransaction(OriginCommand).Add(tt.step))
			require.Nil(t, res)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eykd/tanmark-go/internal/doc"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "doc()"},
		{"marks", "Some **bold** and *it*", `doc(paragraph("Some ", bold"bold", " and ", italic"it"))`},
		{"code span", "use `x := 1` here", `doc(paragraph("use ", code"x := 1", " here"))`},
		{"soft break", "one\ntwo", `doc(paragraph("one two"))`},
		{"hard break", "one\\\ntwo", `doc(paragraph("one", hardBreak, "two"))`},
		{"escapes", `\*x\* \&amp; &lt;`, `doc(paragraph("*x* &amp; <"))`},
		{"image lifted", "a ![i](i.png) b", `doc(paragraph("a"), image["i" "i.png" ""], paragraph("b"))`},
		{"image alone", `![logo](logo.png "Logo")`, `doc(image["logo" "logo.png" "Logo"])`},
		{"thematic break", "---", `doc(paragraph("---"))`},
		{"strikethrough", "~~gone~~", `doc(paragraph("gone"))`},
		{"task list", "- [ ] a\n- [x] b", `doc(taskList(taskItem(paragraph("a")), taskItem(paragraph("b"))))`},
		{"nested list", "- a\n  - b", `doc(bulletList(listItem(paragraph("a"), bulletList(listItem(paragraph("b"))))))`},
		{"blockquote", "> q", `doc(blockquote(paragraph("q")))`},
		{"fenced code", "```go\nx\n```", `doc(codeBlock("x"))`},
		{"indented code", "    x\n    y", `doc(codeBlock("x\ny"))`},
		{"html block", "<div>\nhi\n</div>", `doc(codeBlock("<div>\nhi\n</div>"))`},
		{
			"table",
			"| h |\n| --- |\n| c |",
			`doc(table(tableRow(tableHeader(paragraph("h"))), tableRow(tableCell(paragraph("c")))))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Parse([]byte(tt.in)).String())
		})
	}
}

func TestParseAttributes(t *testing.T) {
	d := Parse([]byte("### Three\n\n5. five\n6. six\n\n- [x] done\n\n```sh\necho\n```\n"))

	require.Equal(t, 3, d.Child(0).Attrs().Level)
	require.Equal(t, doc.KindOrderedList, d.Child(1).Kind())
	require.Equal(t, 5, d.Child(1).Attrs().Start)
	require.True(t, d.Child(2).Child(0).Attrs().Checked)
	require.Equal(t, "sh", d.Child(3).Attrs().Language)
}

func TestParseLinks(t *testing.T) {
	d := Parse([]byte("[site](https://example.com) <mail@example.com> [odd](<a b.md>)"))
	para := d.Child(0)

	site, _ := para.Child(0).Marks().Get(doc.MarkLink)
	require.Equal(t, "https://example.com", site.Href)
	mail, _ := para.Child(2).Marks().Get(doc.MarkLink)
	require.Equal(t, "mailto:mail@example.com", mail.Href)
	require.Equal(t, "mail@example.com", para.Child(2).Text())
	odd, _ := para.Child(4).Marks().Get(doc.MarkLink)
	require.Equal(t, "a b.md", odd.Href)
}

func TestParseAutolinks(t *testing.T) {
	tests := []struct {
		name, src, text, href string
	}{
		{"url", "<https://example.com>", "https://example.com", "https://example.com"},
		{"email", "<mail@example.com>", "mail@example.com", "mailto:mail@example.com"},
		{"mailto kept", "<mailto:mail@example.com>", "mailto:mail@example.com", "mailto:mail@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := Parse([]byte(tt.src)).Child(0).Child(0)
			require.Equal(t, tt.text, node.Text())
			link, ok := node.Marks().Get(doc.MarkLink)
			require.True(t, ok)
			require.Equal(t, tt.href, link.Href)
		})
	}
}

func TestParseImagesInHeadingsKeepAlt(t *testing.T) {
	d := Parse([]byte("# Hello ![world](w.png)"))
	require.Equal(t, `doc(heading("Hello world"))`, d.String())
}

// Package markdown converts between documents and Markdown text. Serialize
// writes a document; Parse reads Markdown through goldmark. Serialize output
// re-parses to an equivalent document, so serializing twice through Parse is
// stable.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Serialize renders d as Markdown. The result ends with exactly one newline;
// an empty document yields "".
func Serialize(d *doc.Node) string {
	out := blocks(d.Children())
	if out == "" {
		return ""
	}
	return out + "\n"
}

// blocks renders sibling blocks separated by blank lines. Adjacent lists of
// the same family alternate their markers so they do not merge on re-parse.
func blocks(nodes []*doc.Node) string {
	var parts []string
	var prev *doc.Node
	alternate := false
	for _, n := range nodes {
		if n.Kind().IsList() && prev != nil && sameListFamily(prev.Kind(), n.Kind()) {
			alternate = !alternate
		} else {
			alternate = false
		}
		s := block(n, alternate)
		if s == "" {
			continue
		}
		parts = append(parts, s)
		prev = n
	}
	return strings.Join(parts, "\n\n")
}

func sameListFamily(a, b doc.Kind) bool {
	ordered := func(k doc.Kind) bool { return k == doc.KindOrderedList }
	return a.IsList() && b.IsList() && ordered(a) == ordered(b)
}

func block(n *doc.Node, alternate bool) string {
	switch n.Kind() {
	case doc.KindParagraph:
		return inline(n, false)
	case doc.KindHeading:
		level := min(max(n.Attrs().Level, 1), 6)
		content := inline(n, true)
		if content == "" {
			return strings.Repeat("#", level)
		}
		return strings.Repeat("#", level) + " " + content
	case doc.KindCodeBlock:
		return codeBlock(n)
	case doc.KindBlockquote:
		inner := blocks(n.Children())
		if inner == "" {
			return ">"
		}
		return prefixLines(inner, "> ", ">")
	case doc.KindBulletList, doc.KindOrderedList, doc.KindTaskList:
		return list(n, alternate)
	case doc.KindTable:
		return table(n)
	case doc.KindImage:
		return image(n.Attrs())
	case doc.KindDoc, doc.KindListItem, doc.KindTaskItem, doc.KindTableRow, doc.KindTableCell,
		doc.KindTableHeader, doc.KindHardBreak, doc.KindText:
		panic(fmt.Sprintf("markdown: %s is not a block", n.Kind()))
	}
	panic(fmt.Sprintf("markdown: unhandled kind %s", n.Kind()))
}

func codeBlock(n *doc.Node) string {
	body := n.TextContent()
	fence := strings.Repeat("`", max(3, longestRun(body, '`')+1))
	info := strings.ReplaceAll(n.Attrs().Language, "`", "")
	if body == "" {
		return fence + info + "\n" + fence
	}
	return fence + info + "\n" + body + "\n" + fence
}

func list(n *doc.Node, alternate bool) string {
	bullet := "-"
	delim := "."
	if alternate {
		bullet, delim = "*", ")"
	}
	var out strings.Builder
	for i := 0; i < n.ChildCount(); i++ {
		item := n.Child(i)
		var marker string
		switch n.Kind() {
		case doc.KindOrderedList:
			marker = strconv.Itoa(n.Attrs().Start+i) + delim + " "
		case doc.KindTaskList:
			box := "[ ]"
			if item.Attrs().Checked {
				box = "[x]"
			}
			marker = bullet + " " + box + " "
		default:
			marker = bullet + " "
		}
		content := blocks(item.Children())
		indent := strings.Repeat(" ", len(marker))
		if n.Kind() == doc.KindTaskList {
			indent = strings.Repeat(" ", len(bullet)+1)
		}
		if i > 0 {
			out.WriteString("\n")
			if last := n.Child(i - 1).Children(); len(last) > 0 && last[len(last)-1].Kind() == doc.KindImage {
				out.WriteString("\n")
			}
		}
		if content == "" {
			out.WriteString(strings.TrimRight(marker, " "))
			continue
		}
		first, rest, _ := strings.Cut(content, "\n")
		out.WriteString(marker + first)
		if rest != "" {
			out.WriteString("\n" + prefixLines(rest, indent, ""))
		}
	}
	return out.String()
}

// table renders a GFM table. The first row is the header row; short rows are
// padded with empty cells.
func table(n *doc.Node) string {
	if n.ChildCount() == 0 {
		return ""
	}
	cols := 0
	rows := make([][]string, n.ChildCount())
	for i := range rows {
		row := n.Child(i)
		for j := 0; j < row.ChildCount(); j++ {
			rows[i] = append(rows[i], cell(row.Child(j)))
		}
		cols = max(cols, len(rows[i]))
	}
	if cols == 0 {
		return ""
	}
	var out strings.Builder
	writeRow := func(cells []string) {
		out.WriteString("|")
		for j := 0; j < cols; j++ {
			c := ""
			if j < len(cells) {
				c = cells[j]
			}
			out.WriteString(" " + c + " |")
		}
	}
	writeRow(rows[0])
	out.WriteString("\n|")
	for j := 0; j < cols; j++ {
		out.WriteString(" --- |")
	}
	for _, r := range rows[1:] {
		out.WriteString("\n")
		writeRow(r)
	}
	return out.String()
}

// cell flattens a table cell to one line of inline Markdown.
func cell(n *doc.Node) string {
	var parts []string
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch {
		case c.IsTextblock() && c.Kind() != doc.KindCodeBlock:
			if s := inline(c, false); s != "" {
				parts = append(parts, strings.ReplaceAll(s, "\\\n", " "))
			}
		case c.Kind() == doc.KindImage:
			parts = append(parts, image(c.Attrs()))
		default:
			if s := escapeText(c.TextContent(), false); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

func image(a doc.Attrs) string {
	alt := escapeText(a.Alt, false)
	out := "![" + alt + "](" + destination(a.Src)
	if a.Title != "" {
		title := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(a.Title)
		out += ` "` + escapeReferences(title) + `"`
	}
	return out + ")"
}

// destination writes a link or image destination, using the angle-bracket
// form when the raw form would not survive re-parsing.
func destination(src string) string {
	if src == "" {
		return "<>"
	}
	if strings.ContainsAny(src, " \t()<>\\") {
		return "<" + escapeReferences(strings.NewReplacer(`\`, `\\`, "<", `\<`, ">", `\>`).Replace(src)) + ">"
	}
	return escapeReferences(src)
}

func prefixLines(s, prefix, emptyPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = emptyPrefix
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func longestRun(s string, c rune) int {
	best, cur := 0, 0
	for _, r := range s {
		if r == c {
			cur++
			best = max(best, cur)
			continue
		}
		cur = 0
	}
	return best
}

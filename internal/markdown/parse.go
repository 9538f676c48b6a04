package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Linkify is left out: bare URLs stay text so that serialized documents
// re-parse to the same tree.
var md = goldmark.New(goldmark.WithExtensions(
	extension.Table,
	extension.Strikethrough,
	extension.TaskList,
))

// Parse reads Markdown into a document. Parsing never fails: constructs the
// document model has no node for are kept as text or code.
//
//   - images are lifted out of paragraphs into block images
//   - a thematic break becomes a paragraph holding "---"
//   - HTML blocks become code blocks with language "html"
//   - strikethrough keeps its text and drops the decoration
//   - a list with any checkbox item becomes a task list
func Parse(source []byte) *doc.Node {
	root := md.Parser().Parse(text.NewReader(source))
	c := converter{source: source}
	return doc.Doc(c.blocks(root)...)
}

type converter struct {
	source []byte
}

func (c converter) blocks(parent ast.Node) []*doc.Node {
	var out []*doc.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c converter) block(n ast.Node) []*doc.Node {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return c.paragraphs(n)
	case *ast.Heading:
		return []*doc.Node{doc.Heading(n.Level, c.headingInline(n)...)}
	case *ast.ThematicBreak:
		return []*doc.Node{doc.Paragraph(doc.Text("---"))}
	case *ast.FencedCodeBlock:
		return []*doc.Node{doc.CodeBlock(string(n.Language(c.source)), c.lines(n.Lines()))}
	case *ast.CodeBlock:
		return []*doc.Node{doc.CodeBlock("", c.lines(n.Lines()))}
	case *ast.HTMLBlock:
		body := c.lines(n.Lines())
		if n.HasClosure() {
			closure := strings.TrimRight(string(n.ClosureLine.Value(c.source)), "\r\n")
			if body != "" {
				body += "\n"
			}
			body += closure
		}
		return []*doc.Node{doc.CodeBlock("html", body)}
	case *ast.Blockquote:
		return []*doc.Node{doc.Blockquote(c.blocks(n)...)}
	case *ast.List:
		return []*doc.Node{c.list(n)}
	case *extast.Table:
		return []*doc.Node{c.table(n)}
	}
	return c.blocks(n)
}

// lines joins the raw lines of a code-like block without the final newline.
func (c converter) lines(lines *text.Segments) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return strings.TrimSuffix(strings.TrimSuffix(b.String(), "\n"), "\r")
}

func (c converter) list(n *ast.List) *doc.Node {
	task := false
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		if _, ok := checkbox(item); ok {
			task = true
			break
		}
	}
	var items []*doc.Node
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		content := c.blocks(item)
		switch {
		case task:
			checked, _ := checkbox(item)
			items = append(items, doc.TaskItem(checked, content...))
		default:
			items = append(items, doc.ListItem(content...))
		}
	}
	switch {
	case task:
		return doc.TaskList(items...)
	case n.IsOrdered():
		return doc.OrderedList(n.Start, items...)
	default:
		return doc.BulletList(items...)
	}
}

// checkbox reports the state of a list item's task checkbox, if it has one.
func checkbox(item ast.Node) (checked, ok bool) {
	first := item.FirstChild()
	if first == nil {
		return false, false
	}
	if box, isBox := first.FirstChild().(*extast.TaskCheckBox); isBox {
		return box.IsChecked, true
	}
	return false, false
}

func (c converter) table(n *extast.Table) *doc.Node {
	var rows []*doc.Node
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		_, header := r.(*extast.TableHeader)
		var cells []*doc.Node
		for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
			content := c.paragraphs(cell)
			if header {
				cells = append(cells, doc.TableHeader(content...))
			} else {
				cells = append(cells, doc.TableCell(content...))
			}
		}
		rows = append(rows, doc.TableRow(cells...))
	}
	return doc.Table(rows...)
}

// paragraphs converts the inline children of n into paragraphs, splitting
// around images so they become blocks of their own.
func (c converter) paragraphs(n ast.Node) []*doc.Node {
	var (
		out     []*doc.Node
		pending []*doc.Node
	)
	flush := func() {
		if content := trimInline(pending); len(content) > 0 {
			out = append(out, doc.Paragraph(content...))
		}
		pending = nil
	}
	for _, node := range c.inline(n, nil) {
		if node.Kind() == doc.KindImage {
			flush()
			out = append(out, node)
			continue
		}
		pending = append(pending, node)
	}
	flush()
	return out
}

// headingInline converts heading content; images keep only their alt text.
func (c converter) headingInline(n ast.Node) []*doc.Node {
	var out []*doc.Node
	for _, node := range c.inline(n, nil) {
		if node.Kind() == doc.KindImage {
			out = append(out, doc.Texts(node.Attrs().Alt)...)
			continue
		}
		out = append(out, node)
	}
	return trimInline(out)
}

func (c converter) inline(parent ast.Node, marks doc.MarkSet) []*doc.Node {
	var out []*doc.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			value := unescape(n.Value(c.source))
			if n.SoftLineBreak() {
				value += " "
			}
			out = append(out, doc.Texts(value, marks...)...)
			if n.HardLineBreak() {
				out = append(out, doc.HardBreak())
			}
		case *ast.String:
			out = append(out, doc.Texts(string(n.Value), marks...)...)
		case *ast.CodeSpan:
			value := strings.ReplaceAll(c.plain(n, true), "\n", " ")
			out = append(out, doc.Texts(value, marks.Add(doc.Code())...)...)
		case *ast.Emphasis:
			m := doc.Italic()
			if n.Level >= 2 {
				m = doc.Bold()
			}
			out = append(out, c.inline(n, marks.Add(m))...)
		case *ast.Link:
			out = append(out, c.inline(n, marks.Add(doc.Link(unescape(n.Destination))))...)
		case *ast.AutoLink:
			href := string(n.URL(c.source))
			if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
				href = "mailto:" + href
			}
			out = append(out, doc.Texts(string(n.Label(c.source)), marks.Add(doc.Link(href))...)...)
		case *ast.Image:
			out = append(out, doc.Image(unescape(n.Destination), c.plain(n, false), unescape(n.Title)))
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				b.Write(seg.Value(c.source))
			}
			out = append(out, doc.Texts(b.String(), marks...)...)
		case *extast.TaskCheckBox:
		default:
			out = append(out, c.inline(n, marks)...)
		}
	}
	return out
}

// plain flattens inline content to text, as for image alt text.
func (c converter) plain(parent ast.Node, raw bool) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Text:
			if raw {
				b.Write(n.Value(c.source))
			} else {
				b.WriteString(unescape(n.Value(c.source)))
			}
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(n.Value)
		default:
			b.WriteString(c.plain(n, raw))
		}
	}
	return b.String()
}

// trimInline drops whitespace and hard breaks at both ends of inline content.
func trimInline(nodes []*doc.Node) []*doc.Node {
	for len(nodes) > 0 {
		first := nodes[0]
		if first.Kind() == doc.KindHardBreak {
			nodes = nodes[1:]
			continue
		}
		if first.Kind() == doc.KindText {
			trimmed := strings.TrimLeft(first.Text(), " \t")
			if trimmed == "" {
				nodes = nodes[1:]
				continue
			}
			nodes = append([]*doc.Node{doc.Text(trimmed, first.Marks()...)}, nodes[1:]...)
		}
		break
	}
	for len(nodes) > 0 {
		last := nodes[len(nodes)-1]
		if last.Kind() == doc.KindHardBreak {
			nodes = nodes[:len(nodes)-1]
			continue
		}
		if last.Kind() == doc.KindText {
			trimmed := strings.TrimRight(last.Text(), " \t")
			if trimmed == "" {
				nodes = nodes[:len(nodes)-1]
				continue
			}
			nodes = append(nodes[:len(nodes)-1:len(nodes)-1], doc.Text(trimmed, last.Marks()...))
		}
		break
	}
	return nodes
}

// unescape resolves backslash escapes and character references in one pass,
// so an escaped ampersand never starts a reference.
func unescape(b []byte) string {
	var out strings.Builder
	out.Grow(len(b))
	for i := 0; i < len(b); {
		c := b[i]
		if c == '\\' && i+1 < len(b) && util.IsPunct(b[i+1]) {
			out.WriteByte(b[i+1])
			i += 2
			continue
		}
		if c == '&' {
			if end := referenceEnd(b, i); end > 0 {
				ref := b[i:end]
				var resolved []byte
				if ref[1] == '#' {
					resolved = util.ResolveNumericReferences(ref)
				} else {
					resolved = util.ResolveEntityNames(ref)
				}
				if string(resolved) != string(ref) {
					out.Write(resolved)
					i = end
					continue
				}
			}
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

// referenceEnd returns the end of a character reference starting at b[i], or
// 0 when b[i:] does not look like one.
func referenceEnd(b []byte, i int) int {
	j := i + 1
	if j < len(b) && b[j] == '#' {
		j++
	}
	start := j
	for j < len(b) && util.IsAlphaNumeric(b[j]) {
		j++
	}
	if j == start || j >= len(b) || b[j] != ';' {
		return 0
	}
	return j + 1
}

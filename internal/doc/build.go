package doc

// Doc builds a document root.
func Doc(blocks ...*Node) *Node { return New(KindDoc, Attrs{}, blocks...) }

// Paragraph builds a paragraph.
func Paragraph(inline ...*Node) *Node { return New(KindParagraph, Attrs{}, inline...) }

// Heading builds a heading of the given level.
func Heading(level int, inline ...*Node) *Node {
	return New(KindHeading, Attrs{Level: level}, inline...)
}

// CodeBlock builds a code block. An empty body yields an empty block.
func CodeBlock(language, body string) *Node {
	return New(KindCodeBlock, Attrs{Language: language}, Texts(body)...)
}

// Blockquote builds a blockquote.
func Blockquote(blocks ...*Node) *Node { return New(KindBlockquote, Attrs{}, blocks...) }

// BulletList builds a bullet list.
func BulletList(items ...*Node) *Node { return New(KindBulletList, Attrs{}, items...) }

// OrderedList builds an ordered list numbered from start.
func OrderedList(start int, items ...*Node) *Node {
	return New(KindOrderedList, Attrs{Start: start}, items...)
}

// ListItem builds a bullet or ordered list item.
func ListItem(blocks ...*Node) *Node { return New(KindListItem, Attrs{}, blocks...) }

// TaskList builds a task list.
func TaskList(items ...*Node) *Node { return New(KindTaskList, Attrs{}, items...) }

// TaskItem builds a task item.
func TaskItem(checked bool, blocks ...*Node) *Node {
	return New(KindTaskItem, Attrs{Checked: checked}, blocks...)
}

// Table builds a table. The first row is treated as the header row.
func Table(rows ...*Node) *Node { return New(KindTable, Attrs{}, rows...) }

// TableRow builds a table row.
func TableRow(cells ...*Node) *Node { return New(KindTableRow, Attrs{}, cells...) }

// TableCell builds a body cell.
func TableCell(blocks ...*Node) *Node { return New(KindTableCell, Attrs{}, blocks...) }

// TableHeader builds a header cell.
func TableHeader(blocks ...*Node) *Node { return New(KindTableHeader, Attrs{}, blocks...) }

// Image builds an image node with a fresh identity.
func Image(src, alt, title string) *Node {
	return New(KindImage, Attrs{Src: src, Alt: alt, Title: title})
}

// HardBreak builds a hard line break.
func HardBreak() *Node { return New(KindHardBreak, Attrs{}) }

// Text is shorthand for NewText.
func Text(value string, marks ...Mark) *Node { return NewText(value, marks...) }

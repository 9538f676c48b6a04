// Package doc defines the tanmark document model: an immutable tree of typed
// nodes and inline marks, addressed by flat integer positions.
package doc

import "fmt"

// Kind is the closed set of node types a document may contain.
type Kind uint8

const (
	KindDoc Kind = iota
	KindParagraph
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindTaskList
	KindTaskItem
	KindCodeBlock
	KindBlockquote
	KindTable
	KindTableRow
	KindTableCell
	KindTableHeader
	KindImage
	KindHardBreak
	KindText
)

var kindNames = [...]string{
	KindDoc:         "doc",
	KindParagraph:   "paragraph",
	KindHeading:     "heading",
	KindBulletList:  "bulletList",
	KindOrderedList: "orderedList",
	KindListItem:    "listItem",
	KindTaskList:    "taskList",
	KindTaskItem:    "taskItem",
	KindCodeBlock:   "codeBlock",
	KindBlockquote:  "blockquote",
	KindTable:       "table",
	KindTableRow:    "tableRow",
	KindTableCell:   "tableCell",
	KindTableHeader: "tableHeader",
	KindImage:       "image",
	KindHardBreak:   "hardBreak",
	KindText:        "text",
}

// String returns the schema name of the kind, e.g. "bulletList".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsBlock reports whether nodes of this kind may appear where block content
// is expected (document root, blockquote, list items, table cells).
func (k Kind) IsBlock() bool {
	switch k {
	case KindParagraph, KindHeading, KindBulletList, KindOrderedList, KindTaskList,
		KindCodeBlock, KindBlockquote, KindTable, KindImage:
		return true
	}
	return false
}

// IsInline reports whether nodes of this kind live inside textblocks.
func (k Kind) IsInline() bool {
	return k == KindText || k == KindHardBreak
}

// IsTextblock reports whether the kind holds inline content directly.
func (k Kind) IsTextblock() bool {
	return k == KindParagraph || k == KindHeading || k == KindCodeBlock
}

// IsLeaf reports whether the kind never has children.
func (k Kind) IsLeaf() bool {
	return k == KindImage || k == KindHardBreak || k == KindText
}

// IsList reports whether the kind is one of the three list containers.
func (k Kind) IsList() bool {
	return k == KindBulletList || k == KindOrderedList || k == KindTaskList
}

// Allows reports whether a node of kind k may hold a direct child of kind
// child.
func (k Kind) Allows(child Kind) bool {
	switch k {
	case KindDoc, KindBlockquote, KindListItem, KindTaskItem, KindTableCell, KindTableHeader:
		return child.IsBlock()
	case KindParagraph, KindHeading:
		return child.IsInline()
	case KindCodeBlock:
		return child == KindText
	case KindBulletList, KindOrderedList:
		return child == KindListItem
	case KindTaskList:
		return child == KindTaskItem
	case KindTable:
		return child == KindTableRow
	case KindTableRow:
		return child == KindTableCell || child == KindTableHeader
	case KindImage, KindHardBreak, KindText:
		return false
	}
	panic(fmt.Sprintf("doc: unhandled kind %s", k))
}

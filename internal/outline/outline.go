// Package outline lists the headings of a document.
package outline

import (
	"strings"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Item is one heading. Pos is the position directly before the heading
// node; Index counts headings from zero in document order.
type Item struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Index int    `json:"index"`
	Pos   int    `json:"pos"`
}

// Of returns the headings of d, including those nested in quotes and lists.
// Code blocks never contribute headings.
func Of(d *doc.Node) []Item {
	var items []Item
	d.Descendants(func(n *doc.Node, pos int, _ *doc.Node, _ int) bool {
		switch {
		case n.Kind() == doc.KindHeading:
			items = append(items, Item{
				Level: n.Attrs().Level,
				Text:  strings.TrimSpace(n.TextContent()),
				Index: len(items),
				Pos:   pos,
			})
			return false
		case n.IsTextblock():
			return false
		}
		return true
	})
	return items
}

const ellipsis = "..."

// DefaultMaxLength is the display width TruncateFileName uses by default.
const DefaultMaxLength = 20

// TruncateFileName shortens name to at most maxLength characters by
// replacing its middle with "...", keeping 60% of the remaining room for the
// front and the rest for the end, where the extension lives.
func TruncateFileName(name string, maxLength int) string {
	r := []rune(name)
	if len(r) <= maxLength {
		return name
	}
	room := maxLength - len(ellipsis)
	if room < 2 {
		return ellipsis
	}
	front := (room*3 + 4) / 5
	back := room - front
	return string(r[:front]) + ellipsis + string(r[len(r)-back:])
}

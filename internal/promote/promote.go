// Package promote inspects the document after a user action and issues at
// most one corrective transaction: bullet lists become task lists when an
// item starts with a checkbox marker, and textblocks holding exactly one
// image's syntax become image nodes again.
package promote

import (
	"regexp"

	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/rules"
	"github.com/eykd/tanmark-go/internal/transform"
)

// Promotion names.
const (
	TaskList = "taskList"
	Image    = "image"
)

var taskMarker = regexp.MustCompile(`^\[([ xX])\] `)

// markerLen is the rune length of every task marker.
const markerLen = 4

// Promotion is a corrective transaction and the promotion that produced it.
type Promotion struct {
	Name        string
	Transaction *transform.Transaction
}

// Promote examines d with selection sel after a document-changing action of
// the given origin.
func Promote(d *doc.Node, sel transform.Selection, origin string) (Promotion, bool) {
	if sel == nil {
		return Promotion{}, false
	}
	if origin == transform.OriginInput && sel.Empty() {
		if tr, ok := taskList(d, sel.From()); ok {
			return Promotion{Name: TaskList, Transaction: tr}, true
		}
	}
	if tr, ok := image(d, sel.From()); ok {
		return Promotion{Name: Image, Transaction: tr}, true
	}
	return Promotion{}, false
}

// taskList converts the bullet list around caret into a task list when the
// caret's paragraph is the first child of its item, starts with a task
// marker, and the caret sits right after the marker.
func taskList(d *doc.Node, caret int) (*transform.Transaction, bool) {
	rp, err := d.Resolve(caret)
	if err != nil || rp.Depth() < 3 {
		return nil, false
	}
	para, item, list := rp.Parent(), rp.Node(-1), rp.Node(-2)
	if para.Kind() != doc.KindParagraph || item.Kind() != doc.KindListItem ||
		list.Kind() != doc.KindBulletList || rp.Index(-1) != 0 {
		return nil, false
	}
	first := para.FirstChild()
	if first == nil || first.Kind() != doc.KindText || first.Marks().Has(doc.MarkCode) {
		return nil, false
	}
	m := taskMarker.FindStringSubmatch(first.Text())
	if m == nil || rp.ParentOffset() != markerLen {
		return nil, false
	}
	current := rp.Index(-2)

	listPos := rp.Before(-2)
	caretAt := listPos + 1
	items := make([]*doc.Node, list.ChildCount())
	for i := range items {
		children := list.Child(i).Children()
		checked := false
		if i == current {
			stripped, err := para.Splice(0, markerLen, nil)
			if err != nil {
				return nil, false
			}
			children[0] = stripped
			checked = m[1] != " "
		}
		if len(children) == 0 || children[0].Kind() != doc.KindParagraph {
			children = append([]*doc.Node{doc.Paragraph()}, children...)
		}
		items[i] = doc.New(doc.KindTaskItem, doc.Attrs{Checked: checked}, children...)
		if i < current {
			caretAt += items[i].Size()
		}
	}
	caretAt += 2

	tr := transform.NewTransaction(transform.OriginPromote).Add(
		transform.ReplaceRange{From: listPos, To: listPos + list.Size(), Nodes: []*doc.Node{doc.TaskList(items...)}},
		transform.SetSelection{Selection: transform.Caret(caretAt)},
	)
	return tr, true
}

// image replaces the textblock at pos with an image node when its whole text
// is image syntax.
func image(d *doc.Node, pos int) (*transform.Transaction, bool) {
	rp, err := d.Resolve(pos)
	if err != nil || rp.Depth() < 1 {
		return nil, false
	}
	block := rp.Parent()
	if !block.IsTextblock() || block.Kind() == doc.KindCodeBlock {
		return nil, false
	}
	for i := 0; i < block.ChildCount(); i++ {
		if block.Child(i).Marks().Has(doc.MarkCode) {
			return nil, false
		}
	}
	attrs, ok := rules.ParseImageMarkdown(block.TextContent())
	if !ok {
		return nil, false
	}
	blockPos := rp.Before(rp.Depth())
	tr := transform.NewTransaction(transform.OriginPromote).Add(transform.ReplaceRange{
		From:  blockPos,
		To:    blockPos + block.Size(),
		Nodes: []*doc.Node{doc.New(doc.KindImage, attrs)},
	})
	res, err := transform.Apply(d, tr)
	if err != nil {
		return nil, false
	}
	near := transform.Near(res.Doc, min(blockPos, res.Doc.ContentSize()), transform.BiasAfter)
	return tr.Add(transform.SetSelection{Selection: near}), true
}

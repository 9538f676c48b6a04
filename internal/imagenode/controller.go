// Package imagenode implements the two-faced image node: rendered while the
// caret is elsewhere, raw Markdown syntax while selected. Edits that break
// the syntax degrade the node to a plain paragraph instead of failing.
package imagenode

import (
	"unicode/utf8"

	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/logger"
	"github.com/eykd/tanmark-go/internal/rules"
	"github.com/eykd/tanmark-go/internal/transform"
)

// State of a controller.
type State int

const (
	Rendered State = iota
	Editing
	// Degraded means the node was replaced by a paragraph; the controller no
	// longer has a node to drive.
	Degraded
)

func (s State) String() string {
	switch s {
	case Rendered:
		return "rendered"
	case Editing:
		return "editing"
	case Degraded:
		return "degraded"
	}
	return "unknown"
}

// Key is a keystroke delivered to the raw-syntax input.
type Key int

const (
	KeyOther Key = iota
	KeySpace
	KeyEnter
)

// Host owns the document the image lives in.
type Host interface {
	Doc() *doc.Node
	Apply(tr *transform.Transaction) error
}

// SyntaxDegradeEvent reports an image replaced by the text that no longer
// parsed as image syntax. Pos is the position where the paragraph starts.
type SyntaxDegradeEvent struct {
	NodeID string
	Text   string
	Pos    int
}

// Controller drives one image node, found by identity on every operation.
type Controller struct {
	host      Host
	id        string
	state     State
	buffer    string
	log       *logger.Logger
	onDegrade func(SyntaxDegradeEvent)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// OnDegrade registers a callback for syntax degrades.
func OnDegrade(fn func(SyntaxDegradeEvent)) Option {
	return func(c *Controller) { c.onDegrade = fn }
}

// New returns a controller in the Rendered state for the image with the
// given identity.
func New(host Host, id string, opts ...Option) *Controller {
	c := &Controller{host: host, id: id, log: logger.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Buffer returns the raw syntax shown while editing.
func (c *Controller) Buffer() string { return c.buffer }

func (c *Controller) find() (*doc.Node, int, bool) {
	return c.host.Doc().FindByID(c.id)
}

// Select node-selects the image and shows its canonical syntax.
func (c *Controller) Select() error {
	node, pos, ok := c.find()
	if !ok {
		return nil
	}
	c.state = Editing
	c.buffer = rules.BuildImageMarkdown(node.Attrs())
	return c.host.Apply(transform.NewTransaction(transform.OriginImage).Add(
		transform.SetSelection{Selection: transform.NodeSelection{Pos: pos}},
	))
}

// Input replaces the raw syntax with text; cursor is the caret offset in
// text, in runes. Valid syntax updates the node in place, empty text deletes
// it, and anything else degrades it to a paragraph holding text.
func (c *Controller) Input(text string, cursor int) error {
	if c.state != Editing {
		return nil
	}
	c.buffer = text
	return c.commit(text, cursor)
}

// Blur commits the buffer and returns to Rendered.
func (c *Controller) Blur() error {
	if c.state != Editing {
		return nil
	}
	err := c.commit(c.buffer, utf8.RuneCountInString(c.buffer))
	if c.state == Editing {
		c.state = Rendered
	}
	return err
}

// Key handles a keystroke in the raw-syntax input and reports whether the
// editor must not see it. Enter commits and leaves editing.
func (c *Controller) Key(k Key) (stopPropagation bool, err error) {
	if c.state != Editing {
		return false, nil
	}
	switch k {
	case KeyEnter:
		return true, c.Blur()
	case KeySpace:
		return true, nil
	}
	return false, nil
}

func (c *Controller) commit(text string, cursor int) error {
	node, pos, ok := c.find()
	if !ok {
		c.state = Rendered
		return nil
	}
	d := c.host.Doc()
	if text == "" {
		return c.remove(d, pos)
	}
	if attrs, ok := rules.ParseImageMarkdown(text); ok {
		if attrs == node.Attrs() {
			return nil
		}
		return c.host.Apply(transform.NewTransaction(transform.OriginImage).Add(
			transform.SetNodeAttributes{Pos: pos, Attrs: attrs},
		))
	}
	return c.degrade(pos, text, cursor)
}

func (c *Controller) degrade(pos int, text string, cursor int) error {
	caret := pos + 1 + max(0, min(cursor, utf8.RuneCountInString(text)))
	err := c.host.Apply(transform.NewTransaction(transform.OriginImage).Add(
		transform.ReplaceRange{From: pos, To: pos + 1, Nodes: []*doc.Node{doc.Paragraph(doc.Text(text))}},
		transform.SetSelection{Selection: transform.Caret(caret)},
	))
	if err != nil {
		return err
	}
	c.state = Degraded
	ev := SyntaxDegradeEvent{NodeID: c.id, Text: text, Pos: pos}
	c.log.Degraded(ev.NodeID, ev.Text, ev.Pos)
	if c.onDegrade != nil {
		c.onDegrade(ev)
	}
	return nil
}

// remove deletes the image. A document left without blocks gets an empty
// paragraph.
func (c *Controller) remove(d *doc.Node, pos int) error {
	tr := transform.NewTransaction(transform.OriginImage)
	if d.ChildCount() == 1 && pos == 0 {
		tr.Add(transform.ReplaceRange{From: 0, To: 1, Nodes: []*doc.Node{doc.Paragraph()}})
	} else {
		tr.Add(transform.DeleteRange{From: pos, To: pos + 1})
	}
	res, err := transform.Apply(d, tr)
	if err != nil {
		return err
	}
	near := transform.Near(res.Doc, max(pos-1, 0), transform.BiasBefore)
	c.state = Rendered
	return c.host.Apply(tr.Add(transform.SetSelection{Selection: near}))
}

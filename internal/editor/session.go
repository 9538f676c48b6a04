// Package editor owns the current document version. A Session turns user
// actions (keystrokes, pastes, Enter, Backspace, image insertion) into
// transactions, runs the pattern rules and the promoter after each one, and
// publishes exactly one version per action.
//
// A Session is not safe for concurrent use.
package editor

import (
	"errors"
	"strings"

	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/imagenode"
	"github.com/eykd/tanmark-go/internal/logger"
	"github.com/eykd/tanmark-go/internal/markdown"
	"github.com/eykd/tanmark-go/internal/promote"
	"github.com/eykd/tanmark-go/internal/rules"
	"github.com/eykd/tanmark-go/internal/transform"
)

// ErrNoTextblock is returned by actions that need the caret inside a
// textblock.
var ErrNoTextblock = errors.New("editor: selection is not inside a textblock")

// maxPasteFirings bounds the paste rule loop.
const maxPasteFirings = 10000

// Version is a published document state.
type Version struct {
	Number    int
	Doc       *doc.Node
	Selection transform.Selection
}

type subscriber struct {
	id int
	fn func(Version)
}

// Session holds one document being edited.
type Session struct {
	doc     *doc.Node
	sel     transform.Selection
	stored  *doc.MarkSet
	version int
	engine  *rules.Engine
	log     *logger.Logger
	subs    []subscriber
	nextSub int
	tickets []*Ticket
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithEngine replaces the default rule engine.
func WithEngine(e *rules.Engine) Option {
	return func(s *Session) { s.engine = e }
}

// New starts a session on d. A nil or empty document is replaced by one
// holding an empty paragraph. The selection starts at the first textblock.
func New(d *doc.Node, opts ...Option) *Session {
	if d == nil || d.ChildCount() == 0 {
		d = doc.Doc(doc.Paragraph())
	}
	s := &Session{doc: d, engine: rules.NewEngine(), log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.sel = transform.Validate(d, nil)
	return s
}

// Open starts a session on parsed Markdown source.
func Open(source string, opts ...Option) *Session {
	return New(markdown.Parse([]byte(source)), opts...)
}

// Doc returns the current document.
func (s *Session) Doc() *doc.Node { return s.doc }

// Selection returns the current selection.
func (s *Session) Selection() transform.Selection { return s.sel }

// Version returns the number of the last published version.
func (s *Session) Version() int { return s.version }

// StoredMarks returns the marks the next typed character will carry when
// they override the marks at the caret, and whether there are any.
func (s *Session) StoredMarks() (doc.MarkSet, bool) {
	if s.stored == nil {
		return nil, false
	}
	return *s.stored, true
}

// Markdown serializes the current document.
func (s *Session) Markdown() string { return markdown.Serialize(s.doc) }

// Subscribe registers fn to receive every published version and returns a
// function that removes it.
func (s *Session) Subscribe(fn func(Version)) (cancel func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// ImageController returns a controller for the image with the given
// identity, editing this session's document.
func (s *Session) ImageController(id string, opts ...imagenode.Option) *imagenode.Controller {
	return imagenode.New(s, id, append([]imagenode.Option{imagenode.WithLogger(s.log)}, opts...)...)
}

// Apply runs tr as one user action. A rejected transaction leaves the
// session untouched and publishes nothing.
func (s *Session) Apply(tr *transform.Transaction) error {
	res, err := s.apply(tr)
	if err != nil {
		return err
	}
	s.finish(tr.Origin, res.Changed)
	return nil
}

// SetSelection moves the selection.
func (s *Session) SetSelection(sel transform.Selection) error {
	return s.Apply(transform.NewTransaction(transform.OriginCommand).Add(transform.SetSelection{Selection: sel}))
}

// TypeText types text one character at a time; each character is a
// keystroke and publishes a version. A newline presses Enter.
func (s *Session) TypeText(text string) error {
	for _, r := range strings.ReplaceAll(text, "\r\n", "\n") {
		var err error
		if r == '\n' {
			err = s.Enter()
		} else {
			err = s.typeRune(r)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) typeRune(r rune) error {
	tr := transform.NewTransaction(transform.OriginInput)
	pos := s.sel.From()
	switch sel := s.sel.(type) {
	case transform.NodeSelection:
		tr.Add(
			transform.ReplaceRange{From: sel.Pos, To: sel.Pos + 1, Nodes: []*doc.Node{doc.Paragraph(doc.Text(string(r)))}},
			transform.SetSelection{Selection: transform.Caret(sel.Pos + 2)},
		)
	default:
		marks := s.marksAt(pos)
		if !s.sel.Empty() {
			tr.Add(transform.DeleteRange{From: pos, To: s.sel.To()})
		}
		tr.Add(
			transform.InsertText{Pos: pos, Text: string(r), Marks: marks},
			transform.SetSelection{Selection: transform.Caret(pos + 1)},
		)
	}
	res, err := s.apply(tr)
	if err != nil {
		return err
	}
	if f, ok := s.engine.Input(s.doc, s.sel.From()); ok {
		if _, err := s.apply(f.Transaction); err == nil {
			s.log.RuleFired(f.Rule, transform.OriginInput, pos)
		}
	}
	s.finish(transform.OriginInput, res.Changed)
	return nil
}

// marksAt returns the marks typed text at pos carries: the stored marks if
// any, else the marks of the text before pos without the non-inclusive link
// and code marks.
func (s *Session) marksAt(pos int) doc.MarkSet {
	if s.stored != nil {
		return *s.stored
	}
	rp, err := s.doc.Resolve(pos)
	if err != nil || rp.Parent().Kind() == doc.KindCodeBlock {
		return nil
	}
	return rp.Marks().Remove(doc.MarkLink).Remove(doc.MarkCode)
}

// Paste inserts plain text at the selection, splitting paragraphs at
// newlines, then converts every paste-rule match in the touched textblocks.
func (s *Session) Paste(text string) error {
	snap := s.snapshot()
	changed, err := s.paste(strings.ReplaceAll(text, "\r\n", "\n"))
	if err != nil {
		s.restore(snap)
		return err
	}
	s.finish(transform.OriginPaste, changed)
	return nil
}

func (s *Session) paste(text string) (bool, error) {
	changed, err := s.clearSelection(transform.OriginPaste)
	if err != nil {
		return false, err
	}
	from := s.sel.From()
	track := func(res *transform.Result) {
		from = res.Mapping.Map(from, transform.BiasBefore)
		changed = changed || res.Changed
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			tr, err := s.splitTransaction(transform.OriginPaste)
			if err != nil {
				return false, err
			}
			res, err := s.apply(tr)
			if err != nil {
				return false, err
			}
			track(res)
		}
		pos := s.sel.From()
		res, err := s.apply(transform.NewTransaction(transform.OriginPaste).Add(
			transform.InsertText{Pos: pos, Text: line, Marks: s.marksAt(pos)},
			transform.SetSelection{Selection: transform.Caret(pos + len([]rune(line)))},
		))
		if err != nil {
			return false, err
		}
		track(res)
	}
	to := s.sel.To()
	for range maxPasteFirings {
		f, ok := s.engine.Paste(s.doc, from, to)
		if !ok {
			break
		}
		res, err := s.apply(f.Transaction)
		if err != nil {
			break
		}
		s.log.RuleFired(f.Rule, transform.OriginPaste, from)
		track(res)
		to = res.Mapping.Map(to, transform.BiasAfter)
	}
	if s.sel.Empty() {
		s.sel = transform.Near(s.doc, s.sel.From(), transform.BiasAfter)
	}
	return changed, nil
}

// Enter splits the textblock at the caret. Inside a list item the item is
// split; in a code block a newline is inserted. Positions before the caret
// keep their meaning and those after it move into the new block.
func (s *Session) Enter() error {
	snap := s.snapshot()
	changed, err := s.clearSelection(transform.OriginCommand)
	if err != nil {
		return err
	}
	tr, err := s.splitTransaction(transform.OriginCommand)
	if err != nil {
		s.restore(snap)
		return err
	}
	res, err := s.apply(tr)
	if err != nil {
		s.restore(snap)
		return err
	}
	s.finish(transform.OriginCommand, changed || res.Changed)
	return nil
}

func (s *Session) splitTransaction(origin string) (*transform.Transaction, error) {
	pos := s.sel.From()
	rp, err := s.doc.Resolve(pos)
	if err != nil {
		return nil, err
	}
	block := rp.Parent()
	if !block.IsTextblock() {
		return nil, ErrNoTextblock
	}
	tr := transform.NewTransaction(origin)
	if block.Kind() == doc.KindCodeBlock {
		return tr.Add(
			transform.InsertText{Pos: pos, Text: "\n"},
			transform.SetSelection{Selection: transform.Caret(pos + 1)},
		), nil
	}
	d := rp.Depth()
	right := transform.NodeType{Kind: block.Kind(), Attrs: block.Attrs()}
	if block.Kind() == doc.KindHeading && pos == rp.End(d) {
		right = transform.NodeType{Kind: doc.KindParagraph}
	}
	split := transform.SplitBlock{Pos: pos, Depth: 1, Types: []transform.NodeType{right}}
	if d >= 2 {
		if item := rp.Node(d - 1); item.Kind() == doc.KindListItem || item.Kind() == doc.KindTaskItem {
			attrs := item.Attrs()
			attrs.Checked = false
			split.Depth = 2
			split.Types = append(split.Types, transform.NodeType{Kind: item.Kind(), Attrs: attrs})
		}
	}
	return tr.Add(
		split,
		transform.SetSelection{Selection: transform.Caret(pos + 2*split.Depth)},
	), nil
}

// Backspace deletes the selection, or the character before the caret. At the
// start of a textblock it joins the block with a preceding textblock or
// deletes a preceding image.
func (s *Session) Backspace() error {
	if !s.sel.Empty() {
		snap := s.snapshot()
		changed, err := s.clearSelection(transform.OriginCommand)
		if err != nil {
			s.restore(snap)
			return err
		}
		s.finish(transform.OriginCommand, changed)
		return nil
	}
	tr, ok := s.backspaceTransaction()
	if !ok {
		s.publish()
		return nil
	}
	return s.Apply(tr)
}

func (s *Session) backspaceTransaction() (*transform.Transaction, bool) {
	pos := s.sel.From()
	rp, err := s.doc.Resolve(pos)
	if err != nil || !rp.Parent().IsTextblock() {
		return nil, false
	}
	tr := transform.NewTransaction(transform.OriginCommand)
	if rp.ParentOffset() > 0 {
		return tr.Add(
			transform.DeleteRange{From: pos - 1, To: pos},
			transform.SetSelection{Selection: transform.Caret(pos - 1)},
		), true
	}
	d := rp.Depth()
	idx := rp.Index(d - 1)
	if idx == 0 {
		return nil, false
	}
	block := rp.Parent()
	prev := rp.Node(d - 1).Child(idx - 1)
	prevPos := rp.Before(d) - prev.Size()
	switch {
	case prev.Kind() == doc.KindImage:
		return tr.Add(
			transform.DeleteRange{From: prevPos, To: prevPos + 1},
			transform.SetSelection{Selection: transform.Caret(pos - 1)},
		), true
	case prev.IsTextblock():
		if _, err := prev.WithChildren(append(prev.Children(), block.Children()...)); err != nil {
			return nil, false
		}
		joinAt := rp.Before(d) - 1
		size := block.ContentSize()
		return tr.Add(
			transform.ReplaceRange{From: joinAt, To: joinAt, Nodes: block.Children()},
			transform.DeleteRange{From: rp.Before(d) + size, To: rp.After(d) + size},
			transform.SetSelection{Selection: transform.Caret(joinAt)},
		), true
	}
	return nil, false
}

// clearSelection deletes a non-empty selection. A selected node is replaced
// by an empty paragraph holding the caret.
func (s *Session) clearSelection(origin string) (bool, error) {
	if s.sel.Empty() {
		return false, nil
	}
	tr := transform.NewTransaction(origin)
	switch sel := s.sel.(type) {
	case transform.NodeSelection:
		tr.Add(
			transform.ReplaceRange{From: sel.Pos, To: sel.Pos + 1, Nodes: []*doc.Node{doc.Paragraph()}},
			transform.SetSelection{Selection: transform.Caret(sel.Pos + 1)},
		)
	default:
		tr.Add(
			transform.DeleteRange{From: s.sel.From(), To: s.sel.To()},
			transform.SetSelection{Selection: transform.Caret(s.sel.From())},
		)
	}
	res, err := s.apply(tr)
	if err != nil {
		return false, err
	}
	return res.Changed, nil
}

// apply runs one transaction against the session state without publishing.
func (s *Session) apply(tr *transform.Transaction) (*transform.Result, error) {
	res, err := transform.Apply(s.doc, tr)
	if err != nil {
		s.log.TransactionRejected(tr.Origin, err)
		return nil, err
	}
	s.doc = res.Doc
	s.sel = res.SelectionFrom(s.sel)
	switch {
	case tr.StoredMarks != nil:
		marks := *tr.StoredMarks
		s.stored = &marks
	case res.Changed:
		s.stored = nil
	}
	s.mapTickets(res.Mapping)
	return res, nil
}

// finish runs the promoter after a document-changing action and publishes.
func (s *Session) finish(origin string, changed bool) {
	if changed {
		if p, ok := promote.Promote(s.doc, s.sel, origin); ok {
			if _, err := s.apply(p.Transaction); err == nil {
				s.log.Promoted(p.Name, s.sel.From())
			}
		}
	}
	s.publish()
}

func (s *Session) publish() {
	s.version++
	v := Version{Number: s.version, Doc: s.doc, Selection: s.sel}
	for _, sub := range append([]subscriber(nil), s.subs...) {
		sub.fn(v)
	}
}

type snapshot struct {
	doc     *doc.Node
	sel     transform.Selection
	stored  *doc.MarkSet
	tickets []Ticket
}

func (s *Session) snapshot() snapshot {
	snap := snapshot{doc: s.doc, sel: s.sel, stored: s.stored}
	for _, t := range s.tickets {
		snap.tickets = append(snap.tickets, *t)
	}
	return snap
}

func (s *Session) restore(snap snapshot) {
	s.doc, s.sel, s.stored = snap.doc, snap.sel, snap.stored
	for i, t := range s.tickets {
		if i < len(snap.tickets) {
			*t = snap.tickets[i]
		}
	}
}

package editor

import (
	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/transform"
	"github.com/eykd/tanmark-go/internal/vault"
)

// Ticket marks where an image will be inserted once its asynchronous
// ingestion finishes. Its position follows every later edit; a ticket whose
// position is deleted in the meantime is dead and its result is dropped.
type Ticket struct {
	pos  int
	live bool
}

// Pos returns the current insertion position.
func (t *Ticket) Pos() int { return t.pos }

// Live reports whether the insertion position still exists.
func (t *Ticket) Live() bool { return t.live }

// BeginImageInsert records the caret as the insertion point of an image
// whose data is still being stored.
func (s *Session) BeginImageInsert() *Ticket {
	t := &Ticket{pos: s.sel.From(), live: true}
	s.tickets = append(s.tickets, t)
	return t
}

// CompleteImageInsert inserts the ingested image at the ticket's position.
// A failed ingestion or a dead ticket inserts nothing. alt is the image's
// alternative text.
func (s *Session) CompleteImageInsert(t *Ticket, ing vault.Ingested, alt string, err error) error {
	s.dropTicket(t)
	if err != nil {
		s.log.Warn("image insert failed", "error", err)
		return nil
	}
	if !t.live {
		s.log.Debug("image insert dropped", "src", ing.RelativePath)
		return nil
	}
	tr, err := s.insertBlockTransaction(t.pos, doc.Image(ing.RelativePath, alt, ""))
	if err != nil {
		return err
	}
	return s.Apply(tr)
}

func (s *Session) dropTicket(t *Ticket) {
	for i, other := range s.tickets {
		if other == t {
			s.tickets = append(s.tickets[:i:i], s.tickets[i+1:]...)
			return
		}
	}
}

func (s *Session) mapTickets(m *transform.Mapping) {
	for _, t := range s.tickets {
		if !t.live {
			continue
		}
		r := m.MapResult(t.pos, transform.BiasAfter)
		if r.Deleted {
			t.live = false
			continue
		}
		t.pos = r.Pos
	}
}

// insertBlockTransaction inserts a block node at pos. Inside a textblock the
// block is split around the node and the caret lands in the text after it.
func (s *Session) insertBlockTransaction(pos int, node *doc.Node) (*transform.Transaction, error) {
	rp, err := s.doc.Resolve(pos)
	if err != nil {
		return nil, err
	}
	tr := transform.NewTransaction(transform.OriginImage)
	block := rp.Parent()
	if !block.IsTextblock() {
		return tr.Add(transform.ReplaceRange{From: pos, To: pos, Nodes: []*doc.Node{node}}), nil
	}
	blockPos := rp.Before(rp.Depth())
	off := rp.ParentOffset()
	switch {
	case off == 0:
		tr.Add(transform.ReplaceRange{From: blockPos, To: blockPos, Nodes: []*doc.Node{node}})
		return tr.Add(transform.SetSelection{Selection: transform.Caret(pos + node.Size())}), nil
	case off == block.ContentSize():
		at := blockPos + block.Size()
		tr.Add(transform.ReplaceRange{From: at, To: at, Nodes: []*doc.Node{node, doc.Paragraph()}})
		return tr.Add(transform.SetSelection{Selection: transform.Caret(at + node.Size() + 1)}), nil
	}
	return tr.Add(
		transform.SplitBlock{Pos: pos},
		transform.ReplaceRange{From: pos + 1, To: pos + 1, Nodes: []*doc.Node{node}},
		transform.SetSelection{Selection: transform.Caret(pos + node.Size() + 2)},
	), nil
}

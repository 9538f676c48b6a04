package rules

import (
	"regexp"

	"github.com/eykd/tanmark-go/internal/doc"
	"github.com/eykd/tanmark-go/internal/transform"
)

var (
	openImageSyntax = regexp.MustCompile(`!\[[^\]]*\]\([^)]*$`)
	anyImageSyntax  = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
)

// Firing is a rule that matched together with the transaction applying it.
type Firing struct {
	Rule        string
	Transaction *transform.Transaction
}

// Engine evaluates an ordered list of rules.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over rules, or over DefaultRules when none are
// given.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Input tests the text between the start of the caret's textblock and the
// caret against each rule's input pattern. The first rule that matches wins.
func (e *Engine) Input(d *doc.Node, caret int) (Firing, bool) {
	rp, err := d.Resolve(caret)
	if err != nil {
		return Firing{}, false
	}
	block := rp.Parent()
	if !block.IsTextblock() || block.Kind() == doc.KindCodeBlock || rp.Marks().Has(doc.MarkCode) {
		return Firing{}, false
	}
	before := string([]rune(blockText(block))[:rp.ParentOffset()])
	openImage := -1
	if loc := openImageSyntax.FindStringIndex(before); loc != nil {
		openImage = len([]rune(before[:loc[0]]))
	}
	for _, r := range e.rules {
		loc := r.Input.FindStringSubmatchIndex(before)
		if loc == nil {
			continue
		}
		m := newMatch(r, r.Input, before, loc)
		if touchesCode(block, m.from, m.to) {
			continue
		}
		if r.AppliesTo == TargetMark && openImage >= 0 && m.from > openImage {
			continue
		}
		return Firing{Rule: r.Name, Transaction: e.transaction(d, block, rp.Before(rp.Depth()), m, true)}, true
	}
	return Firing{}, false
}

// Paste returns the leftmost convertible match of the first rule that has
// one in the part of a textblock that lies within [from, to]. Text outside
// the range is never matched. Callers apply the firing, map the range and
// call Paste again until it reports false.
func (e *Engine) Paste(d *doc.Node, from, to int) (Firing, bool) {
	type window struct {
		node   *doc.Node
		pos    int
		lo, hi int // rune offsets into the block's content
	}
	var windows []window
	d.Descendants(func(n *doc.Node, pos int, _ *doc.Node, _ int) bool {
		end := pos + n.Size()
		if pos > to || end < from {
			return false
		}
		if n.IsTextblock() {
			start := pos + 1
			lo := max(from, start) - start
			hi := min(to, start+n.ContentSize()) - start
			if n.Kind() != doc.KindCodeBlock && lo < hi {
				windows = append(windows, window{node: n, pos: pos, lo: lo, hi: hi})
			}
			return false
		}
		return true
	})
	for _, r := range e.rules {
		for _, w := range windows {
			text := string([]rune(blockText(w.node))[w.lo:w.hi])
			var images [][]int
			if r.AppliesTo == TargetMark {
				images = anyImageSyntax.FindAllStringIndex(text, -1)
			}
			for _, loc := range r.Paste.FindAllStringSubmatchIndex(text, -1) {
				if overlapsAny(loc[0], loc[1], images) {
					continue
				}
				m := newMatch(r, r.Paste, text, loc).shift(w.lo)
				if touchesCode(w.node, m.from, m.to) {
					continue
				}
				return Firing{Rule: r.Name, Transaction: e.transaction(d, w.node, w.pos, m, false)}, true
			}
		}
	}
	return Firing{}, false
}

func overlapsAny(from, to int, spans [][]int) bool {
	for _, s := range spans {
		if from < s[1] && s[0] < to {
			return true
		}
	}
	return false
}

// transaction builds the edit for m found in block, which sits directly
// after blockPos. Input firings also place the caret and clear the rule's
// mark from the stored marks.
func (e *Engine) transaction(d *doc.Node, block *doc.Node, blockPos int, m match, input bool) *transform.Transaction {
	start := blockPos + 1
	tr := transform.NewTransaction(transform.OriginRule)
	switch m.rule.AppliesTo {
	case TargetMark:
		from := start + m.from
		end := from + m.textTo - m.textFrom
		tr.Add(
			transform.DeleteRange{From: start + m.textTo, To: start + m.to},
			transform.DeleteRange{From: from, To: start + m.textFrom},
			transform.AddMark{From: from, To: end, Mark: m.rule.Mark},
		)
		if input {
			tr.Add(transform.SetSelection{Selection: transform.Caret(end)})
			stored := marksAt(d, from).Remove(m.rule.Mark.Type)
			tr.StoredMarks = &stored
		}
	case TargetNode:
		// Split off the text after and before the match, then replace the
		// block left holding only the match.
		nodes := []*doc.Node{doc.New(doc.KindImage, m.rule.Build(m.groups))}
		if m.to < block.ContentSize() {
			tr.Add(transform.SplitBlock{Pos: start + m.to})
		} else if input {
			nodes = append(nodes, doc.Paragraph())
		}
		matchPos := blockPos
		if m.from > 0 {
			tr.Add(transform.SplitBlock{Pos: start + m.from})
			matchPos = start + m.from + 1
		}
		tr.Add(transform.ReplaceRange{From: matchPos, To: matchPos + m.to - m.from + 2, Nodes: nodes})
		if input {
			tr.Add(transform.SetSelection{Selection: transform.Caret(matchPos + 2)})
		}
	}
	return tr
}

func marksAt(d *doc.Node, pos int) doc.MarkSet {
	rp, err := d.Resolve(pos)
	if err != nil {
		return nil
	}
	return rp.Marks()
}

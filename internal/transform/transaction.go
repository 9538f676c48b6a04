// Package transform applies transactions (ordered lists of edit steps) to
// documents, producing new versions and the position mappings between them.
package transform

import (
	"fmt"

	"github.com/eykd/tanmark-go/internal/doc"
)

// Transaction origins used by the editor, rules and promoter.
const (
	OriginInput   = "input"
	OriginPaste   = "paste"
	OriginCommand = "command"
	OriginRule    = "rule"
	OriginPromote = "promote"
	OriginImage   = "image"
)

// Transaction is an ordered list of steps. Each step is interpreted against
// the document produced by the steps before it.
type Transaction struct {
	Origin string
	Steps  []Step
	// StoredMarks, when set, replaces the marks the next typed text will
	// carry.
	StoredMarks *doc.MarkSet
}

// NewTransaction returns an empty transaction tagged with origin.
func NewTransaction(origin string) *Transaction {
	return &Transaction{Origin: origin}
}

// Add appends steps and returns the transaction for chaining.
func (tr *Transaction) Add(steps ...Step) *Transaction {
	tr.Steps = append(tr.Steps, steps...)
	return tr
}

// InvalidStepError reports the step that made a transaction unappliable.
type InvalidStepError struct {
	Index int
	Step  string
	Err   error
}

func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("invalid step %d %s: %v", e.Index, e.Step, e.Err)
}

func (e *InvalidStepError) Unwrap() error { return e.Err }

// Result is a successfully applied transaction.
type Result struct {
	Doc     *doc.Node
	Mapping *Mapping
	// Selection is the selection requested by the transaction, mapped
	// through the steps after the request, or nil when none was requested.
	Selection Selection
	// Changed is false when every step was a no-op.
	Changed bool
}

// SelectionFrom returns the selection after the transaction: the requested
// one if any, otherwise prev mapped through the transaction.
func (r *Result) SelectionFrom(prev Selection) Selection {
	if r.Selection != nil {
		return Validate(r.Doc, r.Selection)
	}
	if prev == nil {
		return Validate(r.Doc, nil)
	}
	return Validate(r.Doc, prev.Map(r.Mapping))
}

// Apply runs every step of tr against d. Transactions are atomic: when any
// step fails, Apply returns an *InvalidStepError and d is left as it was.
func Apply(d *doc.Node, tr *Transaction) (*Result, error) {
	res := &Result{Doc: d, Mapping: &Mapping{}}
	requestedAt := -1
	for i, step := range tr.Steps {
		next, sm, err := step.apply(res.Doc)
		if err != nil {
			return nil, &InvalidStepError{Index: i, Step: step.String(), Err: err}
		}
		if sel, ok := step.(SetSelection); ok {
			res.Selection = sel.Selection
			requestedAt = res.Mapping.Len()
		}
		if next != res.Doc {
			res.Changed = true
		}
		res.Doc = next
		res.Mapping.append(sm)
	}
	if res.Selection != nil {
		res.Selection = res.Selection.Map(res.Mapping.Slice(requestedAt + 1))
	}
	return res, nil
}

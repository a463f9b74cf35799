package doc

import (
	"errors"
	"fmt"

	"redline/types"
)

var (
	// ErrInvalidSpan is returned by Commit when a step received a span
	// outside the document bounds.
	ErrInvalidSpan = errors.New("doc: span out of range")
	// ErrTxCommitted is returned when Commit is called twice.
	ErrTxCommitted = errors.New("doc: transaction already committed")
	// ErrTxOverlap is returned when a transaction is begun while another is
	// still in flight. The host transaction model does not allow overlap.
	ErrTxOverlap = errors.New("doc: another transaction is in flight")
)

// mapStep records one length-changing step in the coordinate space that was
// current when the step executed.
type mapStep struct {
	at       int
	removed  int
	inserted int
}

// Tx is an atomic document mutation under construction. Steps take spans in
// pre-transaction coordinates and are run through the transaction's own
// position mapping internally, so callers reason in a single coordinate
// space. Nothing is visible to readers or the change feed until Commit.
type Tx struct {
	d      *Document
	origin Origin
	runs   []Run
	steps  []mapStep
	err    error
	done   bool
}

// Begin starts an atomic mutation tagged with origin.
func (d *Document) Begin(origin Origin) *Tx {
	tx := &Tx{d: d, origin: origin, runs: append([]Run(nil), d.runs...)}
	if d.inTx {
		tx.err = ErrTxOverlap
	} else {
		d.inTx = true
	}
	return tx
}

// Map maps a pre-transaction offset through the position changes already
// recorded in this transaction. An offset inside a removed range maps to the
// start of the replacement. This is the only sanctioned way to carry an
// offset across earlier steps of the same transaction.
func (tx *Tx) Map(pos int) int {
	for _, s := range tx.steps {
		switch {
		case pos <= s.at:
			// Before the step, unaffected.
		case pos >= s.at+s.removed:
			pos += s.inserted - s.removed
		default:
			pos = s.at
		}
	}
	return pos
}

// ReplaceSpan replaces the contents of span with the given runs.
func (tx *Tx) ReplaceSpan(span types.Span, runs []Run) {
	if tx.done || tx.err != nil {
		return
	}
	from, to, ok := tx.mapSpan(span)
	if !ok {
		return
	}
	tx.runs = splice(tx.runs, from, to, runs)
	tx.steps = append(tx.steps, mapStep{at: from, removed: to - from, inserted: runsLen(runs)})
}

// DeleteRange removes the text covered by span.
func (tx *Tx) DeleteRange(span types.Span) {
	tx.ReplaceSpan(span, nil)
}

// ClearAnnotations strips every annotation within span, keeping the text.
// The document length does not change, so no mapping step is recorded.
func (tx *Tx) ClearAnnotations(span types.Span) {
	if tx.done || tx.err != nil {
		return
	}
	from, to, ok := tx.mapSpan(span)
	if !ok {
		return
	}
	tx.runs = clearRange(tx.runs, from, to)
}

// mapSpan maps a pre-transaction span into the staged coordinate space and
// validates it. On failure it poisons the transaction; Commit reports the
// first error.
func (tx *Tx) mapSpan(span types.Span) (from, to int, ok bool) {
	if span.From < 0 || span.From > span.To {
		tx.err = fmt.Errorf("%w: [%d,%d)", ErrInvalidSpan, span.From, span.To)
		return 0, 0, false
	}
	from, to = tx.Map(span.From), tx.Map(span.To)
	if to > runsLen(tx.runs) || from > to {
		tx.err = fmt.Errorf("%w: [%d,%d)", ErrInvalidSpan, span.From, span.To)
		return 0, 0, false
	}
	return from, to, true
}

// Commit installs the staged runs into the document and fires the change
// feed once. All-or-nothing: if any step failed, the document is untouched
// and the first step error is returned.
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxCommitted
	}
	tx.done = true
	if !errors.Is(tx.err, ErrTxOverlap) {
		tx.d.inTx = false
	}
	if tx.err != nil {
		return tx.err
	}
	tx.d.runs = normalize(tx.runs)
	tx.d.publish(Change{Origin: tx.origin})
	return nil
}

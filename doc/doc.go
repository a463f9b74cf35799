// Package doc is the boundary to the host document engine: an annotated-run
// document with an atomic-transaction mutation API, a position-mapping
// facility, a tagged synchronous change feed, and checkpoint-based undo.
//
// The document owns the text and its overlay annotations and is the single
// source of truth; everything layered on top of it is derived, rebuildable
// state. The document is not safe for concurrent use: the host serializes
// all mutations, and change notifications are delivered synchronously on the
// mutating goroutine.
package doc

import (
	"strings"

	"redline/types"
)

// Annotation marks a run of text as belonging to a pending suggestion hunk.
// Only Insert and Delete kinds appear as annotations; plain text carries
// none.
type Annotation struct {
	Kind    types.Kind
	HunkID  string
	GroupID string
}

// Run is a contiguous piece of document text carrying at most one suggestion
// annotation.
type Run struct {
	Text string
	Ann  *Annotation
}

// AnnotatedRun pairs an annotated run with its current document span.
type AnnotatedRun struct {
	Run  Run
	Span types.Span
}

// Origin is the opaque marker a mutation is tagged with, letting change-feed
// consumers distinguish the suggestion engine's own mutations from external
// edits (typing, remote collaborators, undo).
type Origin string

const (
	OriginExternal   Origin = "external"
	OriginSuggestion Origin = "suggestion"
	OriginUndo       Origin = "undo"
)

// Change is the payload delivered on the change feed after every committed
// mutation.
type Change struct {
	Origin Origin
}

type subscriber struct {
	id int
	fn func(Change)
}

// Document is an in-memory annotated-run document.
type Document struct {
	runs        []Run
	subs        []subscriber
	nextSubID   int
	checkpoints []string
	inTx        bool
}

// New creates a document holding the given plain text.
func New(text string) *Document {
	d := &Document{}
	if text != "" {
		d.runs = []Run{{Text: text}}
	}
	return d
}

// Text returns the full document text, annotated runs included.
func (d *Document) Text() string {
	var b strings.Builder
	for _, r := range d.runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Len returns the document length in bytes.
func (d *Document) Len() int {
	return runsLen(d.runs)
}

// Runs returns a copy of the document's runs in order.
func (d *Document) Runs() []Run {
	return append([]Run(nil), d.runs...)
}

// Slice returns the text covered by span, clamped to the document bounds.
func (d *Document) Slice(span types.Span) string {
	text := d.Text()
	from := clamp(span.From, 0, len(text))
	to := clamp(span.To, from, len(text))
	return text[from:to]
}

// FindAnnotated walks the document and returns every annotated run matching
// pred, with its current span, in document order.
func (d *Document) FindAnnotated(pred func(Annotation) bool) []AnnotatedRun {
	var found []AnnotatedRun
	off := 0
	for _, r := range d.runs {
		if r.Ann != nil && pred(*r.Ann) {
			found = append(found, AnnotatedRun{
				Run:  r,
				Span: types.Span{From: off, To: off + len(r.Text)},
			})
		}
		off += len(r.Text)
	}
	return found
}

// Subscribe registers a change-feed callback and returns its cancel
// function. Delivery is synchronous and in registration order.
func (d *Document) Subscribe(fn func(Change)) func() {
	id := d.nextSubID
	d.nextSubID++
	d.subs = append(d.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) publish(c Change) {
	// Copy so a callback unsubscribing mid-delivery cannot skip anyone.
	subs := append([]subscriber(nil), d.subs...)
	for _, s := range subs {
		s.fn(c)
	}
}

// RecordCheckpoint pushes an undo checkpoint holding the text the next Undo
// restores. Only batch finalization records checkpoints; intermediate
// review states never enter undo history.
func (d *Document) RecordCheckpoint(before string) {
	d.checkpoints = append(d.checkpoints, before)
}

// CanUndo reports whether a checkpoint is available.
func (d *Document) CanUndo() bool {
	return len(d.checkpoints) > 0
}

// Undo restores the most recent checkpoint, replacing the whole document
// with its recorded text (annotations cleared), and notifies the change feed
// with OriginUndo. Returns false when no checkpoint exists.
func (d *Document) Undo() bool {
	if len(d.checkpoints) == 0 {
		return false
	}
	before := d.checkpoints[len(d.checkpoints)-1]
	d.checkpoints = d.checkpoints[:len(d.checkpoints)-1]

	d.runs = nil
	if before != "" {
		d.runs = []Run{{Text: before}}
	}
	d.publish(Change{Origin: OriginUndo})
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

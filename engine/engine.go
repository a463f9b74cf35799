// Package engine exposes the review controller: the UI-facing state machine
// that activates a suggestion batch, steps through its pending hunks, and
// applies accept/reject decisions until the batch is finalized.
package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"redline/doc"
	"redline/overlay"
	"redline/text"
	"redline/types"
)

// ErrStaleSpan is returned by ApplyRewrite when the target span no longer
// holds the text the rewrite was computed against.
var ErrStaleSpan = errors.New("engine: rewrite target no longer matches original text")

// State is the controller's review state.
type State int

const (
	StateIdle State = iota
	StateReviewing
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReviewing:
		return "reviewing"
	default:
		return "unknown"
	}
}

type observer struct {
	id int
	fn func()
}

// Engine drives suggestion review over one document. It owns only derived
// state (the store index, the review cursor); the document remains the
// source of truth throughout.
//
// The engine is single-goroutine by design: the host document serializes all
// mutations and delivers change notifications synchronously, so no internal
// locking is needed or present.
type Engine struct {
	d     *doc.Document
	store *overlay.Store

	state       State
	activeGroup string
	cursor      int

	// Pre-rewrite text per group, consumed when the group finalizes.
	snapshots map[string]string

	observers   []observer
	nextObsID   int
	unsubscribe func()
}

// New creates an engine bound to d and subscribes to its change feed.
// Call Close when the editor instance owning the engine is torn down.
func New(d *doc.Document) *Engine {
	e := &Engine{
		d:         d,
		store:     overlay.NewStore(d),
		snapshots: make(map[string]string),
	}
	e.unsubscribe = d.Subscribe(e.onDocChange)
	return e
}

// Close detaches the engine from the document change feed.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// Document returns the document the engine reviews.
func (e *Engine) Document() *doc.Document { return e.d }

// OnChange registers an observer fired whenever the pending set changes:
// registration, resolution, or external invalidation. Returns the cancel
// function.
func (e *Engine) OnChange(fn func()) func() {
	id := e.nextObsID
	e.nextObsID++
	e.observers = append(e.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range e.observers {
			if o.id == id {
				e.observers = append(e.observers[:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify() {
	obs := append([]observer(nil), e.observers...)
	for _, o := range obs {
		o.fn()
	}
}

// ApplyRewrite diffs original against proposed, overlays the hunks onto
// target as one atomic mutation, and activates the resulting group for
// review. Returns the group id.
//
// The document text at target must still equal original; otherwise the
// rewrite was computed against stale text and applying it would corrupt the
// document, so ErrStaleSpan is returned. An empty groupID gets a fresh id.
func (e *Engine) ApplyRewrite(original, proposed string, target types.Span, groupID string) (string, error) {
	if got := e.d.Slice(target); got != original {
		return "", fmt.Errorf("%w: span [%d,%d)", ErrStaleSpan, target.From, target.To)
	}

	snapshot := e.d.Text()
	segs := text.Diff(original, proposed)

	group, err := overlay.Apply(e.d, target, segs, groupID)
	if err != nil {
		return "", err
	}

	e.store.Resync()
	if len(group.Hunks) > 0 {
		e.snapshots[group.ID] = snapshot
	}
	e.RegisterGroup(group.ID)

	log.Debug().
		Str("group", group.ID).
		Int("hunks", len(group.Hunks)).
		Msg("rewrite applied")
	return group.ID, nil
}

// RegisterGroup activates a group for review and resets the cursor to its
// first pending hunk. A group with nothing pending leaves the engine idle.
func (e *Engine) RegisterGroup(id string) {
	e.activeGroup = id
	e.cursor = 0
	if len(e.store.Pending(id)) > 0 {
		e.state = StateReviewing
	} else {
		e.state = StateIdle
		e.activeGroup = ""
	}
	e.notify()
}

// State returns the controller's current state.
func (e *Engine) State() State { return e.state }

// ActiveGroup returns the id of the group under review, or "".
func (e *Engine) ActiveGroup() string { return e.activeGroup }

// Current returns the pending hunk at the review cursor, or nil when no
// review is active.
func (e *Engine) Current() *types.Hunk {
	if e.state != StateReviewing {
		return nil
	}
	pending := e.store.Pending(e.activeGroup)
	if len(pending) == 0 {
		return nil
	}
	if e.cursor >= len(pending) {
		e.cursor = len(pending) - 1
	}
	return pending[e.cursor]
}

// Progress reports the cursor position and counts for the active group.
func (e *Engine) Progress() types.Progress {
	if e.state != StateReviewing {
		return types.Progress{}
	}
	g := e.store.Group(e.activeGroup)
	if g == nil {
		return types.Progress{}
	}
	return types.Progress{
		CurrentIndex:   e.cursor,
		TotalInGroup:   len(g.Hunks),
		PendingInGroup: len(g.Pending()),
	}
}

// Next advances the cursor to the next pending hunk, wrapping around.
// No-op with nothing pending.
func (e *Engine) Next() {
	if n := len(e.store.Pending(e.activeGroup)); n > 0 {
		e.cursor = (e.cursor + 1) % n
		e.notify()
	}
}

// Prev moves the cursor to the previous pending hunk, wrapping around.
// No-op with nothing pending.
func (e *Engine) Prev() {
	if n := len(e.store.Pending(e.activeGroup)); n > 0 {
		e.cursor = (e.cursor - 1 + n) % n
		e.notify()
	}
}

// AcceptCurrent resolves the hunk at the cursor as accepted.
func (e *Engine) AcceptCurrent() error {
	return e.resolveCurrent(types.DecisionAccept)
}

// RejectCurrent resolves the hunk at the cursor as rejected.
func (e *Engine) RejectCurrent() error {
	return e.resolveCurrent(types.DecisionReject)
}

func (e *Engine) resolveCurrent(decision types.Decision) error {
	h := e.Current()
	if h == nil {
		return nil
	}
	if _, err := overlay.Resolve(e.d, e.store, overlay.HunkTarget(h.ID), decision); err != nil {
		return err
	}
	e.afterResolution()
	return nil
}

// AcceptAll resolves every pending hunk in the active group as accepted, in
// one batch mutation.
func (e *Engine) AcceptAll() error {
	return e.resolveAll(types.DecisionAccept)
}

// RejectAll resolves every pending hunk in the active group as rejected, in
// one batch mutation.
func (e *Engine) RejectAll() error {
	return e.resolveAll(types.DecisionReject)
}

func (e *Engine) resolveAll(decision types.Decision) error {
	if e.state != StateReviewing {
		return nil
	}
	if _, err := overlay.Resolve(e.d, e.store, overlay.GroupTarget(e.activeGroup), decision); err != nil {
		return err
	}
	e.afterResolution()
	return nil
}

// afterResolution re-clamps the cursor or finalizes the batch once nothing
// is pending, then notifies observers.
func (e *Engine) afterResolution() {
	pending := e.store.Pending(e.activeGroup)
	if len(pending) == 0 {
		e.finalize()
	} else if e.cursor > len(pending)-1 {
		e.cursor = len(pending) - 1
	}
	e.notify()
}

// finalize closes out a fully-resolved batch. This is the only undo
// checkpoint: one Undo from here returns the document to its pre-rewrite
// text, while the overlay-apply and per-hunk resolution mutations never
// entered history.
func (e *Engine) finalize() {
	if snapshot, ok := e.snapshots[e.activeGroup]; ok {
		e.d.RecordCheckpoint(snapshot)
		delete(e.snapshots, e.activeGroup)
	}
	log.Debug().Str("group", e.activeGroup).Msg("batch finalized")
	e.activeGroup = ""
	e.cursor = 0
	e.state = StateIdle
}

// Undo reverts the most recently finalized batch, restoring the pre-rewrite
// text. Returns false when nothing is undoable.
func (e *Engine) Undo() bool {
	return e.d.Undo()
}

// onDocChange handles the document change feed. The engine's own tagged
// mutations were already handled inline; anything else is an external edit
// (typing, a remote collaborator, undo), which can split, merge, or shift
// annotated runs in ways unsafe to patch incrementally. Conservative
// invalidation: full resync, re-clamp or clear the cursor, notify.
func (e *Engine) onDocChange(c doc.Change) {
	if c.Origin == doc.OriginSuggestion {
		return
	}
	if e.activeGroup == "" && !e.store.HasPending() {
		return
	}

	e.store.Resync()

	if e.activeGroup != "" {
		pending := e.store.Pending(e.activeGroup)
		if len(pending) == 0 {
			// The edit invalidated the whole batch; its snapshot no longer
			// describes a state the user can return to.
			delete(e.snapshots, e.activeGroup)
			e.activeGroup = ""
			e.cursor = 0
			e.state = StateIdle
			log.Debug().Msg("active group invalidated by external edit")
		} else if e.cursor > len(pending)-1 {
			e.cursor = len(pending) - 1
		}
	}
	e.notify()
}

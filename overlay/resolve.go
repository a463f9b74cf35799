package overlay

import (
	"sort"

	"github.com/rs/zerolog/log"

	"redline/doc"
	"redline/types"
)

// Target selects which hunks a resolution call applies to: one hunk, one
// group, or everything pending.
type Target struct {
	hunkID  string
	groupID string
	all     bool
}

// HunkTarget selects a single hunk by id.
func HunkTarget(id string) Target { return Target{hunkID: id} }

// GroupTarget selects every pending hunk in a group.
func GroupTarget(id string) Target { return Target{groupID: id} }

// AllTarget selects every pending hunk in the document.
func AllTarget() Target { return Target{all: true} }

// Outcome reports what a resolution call did. A zero Outcome is the
// distinguishable "nothing to do" result for stale ids and empty groups —
// an expected race in a collaborative document, never an error.
type Outcome struct {
	Resolved int
}

// Applied reports whether the call resolved at least one hunk.
func (o Outcome) Applied() bool { return o.Resolved > 0 }

// Resolve applies an accept/reject decision to the targeted pending hunks as
// one atomic document mutation.
//
// Per hunk kind: accepting an Insert or rejecting a Delete keeps the text
// and strips the annotation; rejecting an Insert or accepting a Delete
// deletes the text entirely.
//
// The batch is computed as a single pass over pre-transaction coordinates.
// Deletions are applied in descending span order so earlier deletions never
// invalidate later offsets, then annotation strips run through the
// transaction's own position mapping. Hunk statuses are updated before the
// closing resync so observers see correct status immediately.
func Resolve(d *doc.Document, s *Store, target Target, decision types.Decision) (Outcome, error) {
	// Spans cached in the store go stale on every mutation; re-derive from
	// the document before trusting them.
	s.Resync()

	hunks := selectPending(s, target)
	if len(hunks) == 0 {
		return Outcome{}, nil
	}

	wantDelete := make(map[string]bool, len(hunks))
	for _, h := range hunks {
		wantDelete[h.ID] = deletesText(h.Kind, decision)
	}

	// Work from the annotated runs themselves rather than the aggregated
	// hunk spans: an externally split hunk then resolves run by run, leaving
	// any interleaved foreign text alone.
	var deletions, strips []types.Span
	for _, ar := range d.FindAnnotated(func(a doc.Annotation) bool {
		_, ok := wantDelete[a.HunkID]
		return ok
	}) {
		if wantDelete[ar.Run.Ann.HunkID] {
			deletions = append(deletions, ar.Span)
		} else {
			strips = append(strips, ar.Span)
		}
	}

	sort.Slice(deletions, func(i, j int) bool {
		return deletions[i].From > deletions[j].From
	})

	tx := d.Begin(doc.OriginSuggestion)
	for _, span := range deletions {
		tx.DeleteRange(span)
	}
	for _, span := range strips {
		tx.ClearAnnotations(span)
	}
	if err := tx.Commit(); err != nil {
		return Outcome{}, err
	}

	status := types.StatusAccepted
	if decision == types.DecisionReject {
		status = types.StatusRejected
	}
	for _, h := range hunks {
		h.Status = status
	}

	s.Resync()

	log.Debug().
		Str("decision", decision.String()).
		Int("hunks", len(hunks)).
		Msg("resolved")
	return Outcome{Resolved: len(hunks)}, nil
}

// deletesText reports whether the decision removes the hunk's text instead
// of keeping it.
func deletesText(kind types.Kind, decision types.Decision) bool {
	if kind == types.Insert {
		return decision == types.DecisionReject
	}
	return decision == types.DecisionAccept
}

func selectPending(s *Store, target Target) []*types.Hunk {
	switch {
	case target.hunkID != "":
		if h := s.findPendingHunk(target.hunkID); h != nil {
			return []*types.Hunk{h}
		}
		return nil
	case target.groupID != "":
		return s.Pending(target.groupID)
	case target.all:
		var hunks []*types.Hunk
		for _, id := range s.Groups() {
			hunks = append(hunks, s.Pending(id)...)
		}
		return hunks
	default:
		return nil
	}
}

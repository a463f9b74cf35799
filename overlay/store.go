package overlay

import (
	"sort"
	"time"

	"redline/doc"
	"redline/types"
)

// Store is the in-memory suggestion index: groups and hunks derived from the
// document's overlay annotations. It is a rebuildable cache, never
// authoritative — on any doubt it re-derives from the document via Resync.
type Store struct {
	d      *doc.Document
	groups map[string]*types.Group
	order  []string
}

// NewStore creates an empty store bound to d. Call Resync to populate it.
func NewStore(d *doc.Document) *Store {
	return &Store{d: d, groups: make(map[string]*types.Group)}
}

// Resync rebuilds the group index from scratch by walking the current
// document. This is the canonical recovery path whenever the document
// changed through a path the engine did not control.
//
// Hunks still annotated in the document are Pending. Hunks known from a
// previous sync whose annotations are gone keep their recorded
// Accepted/Rejected status; ones that vanished while still Pending were
// invalidated by an external edit and are dropped. Resync is idempotent
// while the document does not change.
func (s *Store) Resync() {
	found := make(map[string]*types.Group)
	var order []string

	for _, ar := range s.d.FindAnnotated(func(doc.Annotation) bool { return true }) {
		ann := *ar.Run.Ann
		g := found[ann.GroupID]
		if g == nil {
			g = &types.Group{ID: ann.GroupID, CreatedAt: time.Now()}
			if old := s.groups[ann.GroupID]; old != nil {
				g.CreatedAt = old.CreatedAt
			}
			found[ann.GroupID] = g
			order = append(order, ann.GroupID)
		}
		// An external edit can split one hunk's run; re-aggregate the
		// pieces under the hunk id.
		if h := g.Hunk(ann.HunkID); h != nil {
			h.Text += ar.Run.Text
			h.Span.To = ar.Span.To
			continue
		}
		g.Hunks = append(g.Hunks, &types.Hunk{
			ID:      ann.HunkID,
			GroupID: ann.GroupID,
			Kind:    ann.Kind,
			Text:    ar.Run.Text,
			Span:    ar.Span,
			Status:  types.StatusPending,
		})
	}

	// Carry over resolved hunks: they have no annotation anymore but still
	// count toward the group's Resolved status.
	for id, old := range s.groups {
		for _, h := range old.Hunks {
			if h.Status == types.StatusPending {
				continue
			}
			g := found[id]
			if g == nil {
				g = &types.Group{ID: id, CreatedAt: old.CreatedAt}
				found[id] = g
				order = append(order, id)
			}
			if g.Hunk(h.ID) == nil {
				g.Hunks = append(g.Hunks, h)
			}
		}
	}

	for _, g := range found {
		sortHunks(g.Hunks)
	}

	s.groups = found
	s.order = order
}

func sortHunks(hunks []*types.Hunk) {
	sort.SliceStable(hunks, func(i, j int) bool {
		return hunks[i].Span.From < hunks[j].Span.From
	})
}

// Group returns the indexed group with the given id, or nil.
func (s *Store) Group(id string) *types.Group {
	return s.groups[id]
}

// Pending returns the group's pending hunks in document order. A nil or
// unknown group id yields nil.
func (s *Store) Pending(id string) []*types.Hunk {
	g := s.groups[id]
	if g == nil {
		return nil
	}
	return g.Pending()
}

// Groups lists known group ids in document-discovery order.
func (s *Store) Groups() []string {
	return append([]string(nil), s.order...)
}

// HasPending reports whether any indexed group still has pending hunks.
func (s *Store) HasPending() bool {
	for _, g := range s.groups {
		if len(g.Pending()) > 0 {
			return true
		}
	}
	return false
}

// findPendingHunk locates a pending hunk by id across all groups.
func (s *Store) findPendingHunk(id string) *types.Hunk {
	for _, g := range s.groups {
		if h := g.Hunk(id); h != nil && h.Status == types.StatusPending {
			return h
		}
	}
	return nil
}

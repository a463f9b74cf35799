// Package overlay turns diff segments into reviewable annotations on a live
// document and resolves them back into plain text. It holds the three
// document-facing pieces of the suggestion engine: applying a diff as one
// atomic overlay mutation, indexing the resulting annotations, and applying
// accept/reject decisions.
package overlay

import (
	"time"

	"github.com/rs/zerolog/log"

	"redline/doc"
	"redline/text"
	"redline/types"
)

// Apply overlays a diff onto the document as one atomic mutation replacing
// target. Equal segments become plain text; Insert and Delete segments
// become annotated runs carrying fresh hunk ids under groupID. Delete text
// stays visible under its annotation until resolved, which is what makes it
// reviewable.
//
// Observers of the document see a single consistent transition, never a
// half-applied diff. The returned group's hunk spans are in post-transaction
// coordinates. Only document transaction failures propagate.
func Apply(d *doc.Document, target types.Span, segs []text.Segment, groupID string) (*types.Group, error) {
	if groupID == "" {
		groupID = types.NewGroupID()
	}
	group := &types.Group{ID: groupID, CreatedAt: time.Now()}

	runs := make([]doc.Run, 0, len(segs))
	off := target.From
	for _, seg := range segs {
		if seg.Text == "" {
			continue
		}
		if seg.Kind == types.Equal {
			runs = append(runs, doc.Run{Text: seg.Text})
			off += len(seg.Text)
			continue
		}
		h := &types.Hunk{
			ID:      types.NewHunkID(),
			GroupID: groupID,
			Kind:    seg.Kind,
			Text:    seg.Text,
			Span:    types.Span{From: off, To: off + len(seg.Text)},
			Status:  types.StatusPending,
		}
		group.Hunks = append(group.Hunks, h)
		runs = append(runs, doc.Run{
			Text: seg.Text,
			Ann:  &doc.Annotation{Kind: seg.Kind, HunkID: h.ID, GroupID: groupID},
		})
		off += len(seg.Text)
	}

	tx := d.Begin(doc.OriginSuggestion)
	tx.ReplaceSpan(target, runs)
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("group", groupID).
		Int("hunks", len(group.Hunks)).
		Msg("overlay applied")
	return group, nil
}

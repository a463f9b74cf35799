package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redline/doc"
	"redline/types"
)

func TestStoreCarriesResolvedHunksAcrossResync(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")
	pending := s.Pending(group.ID)
	require.Len(t, pending, 2)

	_, err := Resolve(d, s, HunkTarget(pending[0].ID), types.DecisionAccept)
	require.NoError(t, err)

	// The resolved hunk has no annotation left, but repeated resyncs must
	// not forget it: the group stays Partial, not Pending.
	s.Resync()
	s.Resync()

	g := s.Group(group.ID)
	require.NotNil(t, g)
	assert.Equal(t, types.GroupPartial, g.Status())
	assert.Len(t, g.Hunks, 2)
	assert.Len(t, g.Pending(), 1)
}

func TestStoreReaggregatesSplitHunk(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")

	var insert *types.Hunk
	for _, h := range s.Pending(group.ID) {
		if h.Kind == types.Insert {
			insert = h
		}
	}
	require.NotNil(t, insert)

	// The user types plain text in the middle of the annotated insert,
	// splitting its run in two.
	mid := insert.Span.From + 3
	tx := d.Begin(doc.OriginExternal)
	tx.ReplaceSpan(types.Span{From: mid, To: mid}, []doc.Run{{Text: "XYZ"}})
	require.NoError(t, tx.Commit())

	s.Resync()

	g := s.Group(group.ID)
	require.NotNil(t, g)
	h := g.Hunk(insert.ID)
	require.NotNil(t, h, "split hunk still indexed under one id")
	assert.Equal(t, types.StatusPending, h.Status)
	assert.Equal(t, insert.Text, h.Text, "hunk text is the annotated pieces only")
	assert.Equal(t, insert.Span.Len()+3, h.Span.Len(), "span covers the split region")
}

func TestStoreResolvesSplitHunkWithoutEatingForeignText(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")

	var insert *types.Hunk
	for _, h := range s.Pending(group.ID) {
		if h.Kind == types.Insert {
			insert = h
		}
	}
	require.NotNil(t, insert)

	mid := insert.Span.From + 3
	tx := d.Begin(doc.OriginExternal)
	tx.ReplaceSpan(types.Span{From: mid, To: mid}, []doc.Run{{Text: "XYZ"}})
	require.NoError(t, tx.Commit())

	// Rejecting the split insert removes both annotated pieces but leaves
	// the user's interleaved text in place.
	out, err := Resolve(d, s, HunkTarget(insert.ID), types.DecisionReject)
	require.NoError(t, err)
	require.True(t, out.Applied())

	assert.Contains(t, d.Text(), "XYZ")
	assert.Empty(t, d.FindAnnotated(func(a doc.Annotation) bool { return a.HunkID == insert.ID }))
}

func TestStoreGroupsListsDocumentOrder(t *testing.T) {
	d := doc.New("first second")
	g1 := applyRewrite(t, d, types.Span{From: 0, To: 5}, "1st")
	g2 := applyRewrite(t, d, types.Span{From: d.Len() - 6, To: d.Len()}, "2nd")

	s := NewStore(d)
	s.Resync()

	assert.Equal(t, []string{g1.ID, g2.ID}, s.Groups())
	assert.True(t, s.HasPending())
}

func TestStoreUnknownGroup(t *testing.T) {
	s := NewStore(doc.New("text"))
	s.Resync()

	assert.Nil(t, s.Group("missing"))
	assert.Nil(t, s.Pending("missing"))
	assert.False(t, s.HasPending())
}

package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redline/doc"
	"redline/types"
)

func setupRewrite(t *testing.T, original, proposed string) (*doc.Document, *Store, *types.Group) {
	t.Helper()
	d := doc.New(original)
	group := applyRewrite(t, d, types.Span{From: 0, To: len(original)}, proposed)
	s := NewStore(d)
	s.Resync()
	return d, s, group
}

func TestAcceptAllYieldsProposed(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")

	out, err := Resolve(d, s, GroupTarget(group.ID), types.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Resolved)

	assert.Equal(t, "Hello Universe", d.Text())
	assert.Empty(t, d.FindAnnotated(func(doc.Annotation) bool { return true }))
	assert.Equal(t, types.GroupResolved, s.Group(group.ID).Status())
}

func TestRejectAllYieldsOriginal(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")

	out, err := Resolve(d, s, GroupTarget(group.ID), types.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Resolved)

	assert.Equal(t, "Hello World", d.Text())
	assert.Empty(t, d.FindAnnotated(func(doc.Annotation) bool { return true }))
	assert.Equal(t, types.GroupResolved, s.Group(group.ID).Status())
}

// Exactly one of accept/reject strips the annotation keeping the text, and
// the other removes the text; afterwards no dangling annotation remains for
// the hunk id.
func TestAcceptRejectCompleteness(t *testing.T) {
	cases := []struct {
		name      string
		kind      types.Kind
		decision  types.Decision
		textStays bool
	}{
		{"accept insert keeps text", types.Insert, types.DecisionAccept, true},
		{"reject insert deletes text", types.Insert, types.DecisionReject, false},
		{"accept delete deletes text", types.Delete, types.DecisionAccept, false},
		{"reject delete keeps text", types.Delete, types.DecisionReject, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proposed := "Hello Worlds"
			if tc.kind == types.Delete {
				proposed = "Hello Worl"
			}
			d, s, group := setupRewrite(t, "Hello World", proposed)

			var target *types.Hunk
			for _, h := range group.Hunks {
				if h.Kind == tc.kind {
					target = h
				}
			}
			require.NotNil(t, target)

			out, err := Resolve(d, s, HunkTarget(target.ID), tc.decision)
			require.NoError(t, err)
			require.True(t, out.Applied())

			dangling := d.FindAnnotated(func(a doc.Annotation) bool { return a.HunkID == target.ID })
			assert.Empty(t, dangling, "no annotation may survive resolution")

			if tc.textStays {
				assert.Contains(t, d.Text(), target.Text)
			} else {
				assert.NotContains(t, d.Text(), target.Text)
			}
		})
	}
}

// A mixed group with delete, insert, delete hunks: rejectAll must remove
// only the insert, keep both delete-kind texts intact, and end at the
// original text regardless of internal processing order.
func TestRejectAllOrderingSafety(t *testing.T) {
	d, s, group := setupRewrite(t, "aaaa bbbb cccc", "axxa bbbb cyyc")
	require.GreaterOrEqual(t, len(group.Hunks), 3, "expect edits on both ends")

	out, err := Resolve(d, s, GroupTarget(group.ID), types.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, len(group.Hunks), out.Resolved)

	assert.Equal(t, "aaaa bbbb cccc", d.Text())
}

func TestAcceptAllOrderingSafety(t *testing.T) {
	d, s, group := setupRewrite(t, "one two three four", "one 2 three 4")

	_, err := Resolve(d, s, GroupTarget(group.ID), types.DecisionAccept)
	require.NoError(t, err)

	assert.Equal(t, "one 2 three 4", d.Text())
}

func TestResolveStaleHunkIsNoOp(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")
	staleID := group.Hunks[0].ID

	// External edit wipes all annotations before the caller resolves.
	tx := d.Begin(doc.OriginExternal)
	tx.ReplaceSpan(types.Span{From: 0, To: d.Len()}, []doc.Run{{Text: "fresh text"}})
	require.NoError(t, tx.Commit())

	out, err := Resolve(d, s, HunkTarget(staleID), types.DecisionAccept)
	require.NoError(t, err, "stale references never error")
	assert.False(t, out.Applied(), "stale id must be a distinguishable no-op")
	assert.Equal(t, "fresh text", d.Text())
}

func TestResolveEmptyGroupIsNoOp(t *testing.T) {
	d, s, group := setupRewrite(t, "Hello World", "Hello Universe")

	_, err := Resolve(d, s, GroupTarget(group.ID), types.DecisionAccept)
	require.NoError(t, err)

	out, err := Resolve(d, s, GroupTarget(group.ID), types.DecisionReject)
	require.NoError(t, err)
	assert.False(t, out.Applied())
	assert.Equal(t, "Hello Universe", d.Text(), "second resolution must not touch the document")
}

func TestResolveSingleHunkLeavesOthersPending(t *testing.T) {
	d, s, group := setupRewrite(t, "aaaa bbbb cccc", "azza bbbb czzc")
	pending := s.Pending(group.ID)
	require.GreaterOrEqual(t, len(pending), 3)

	out, err := Resolve(d, s, HunkTarget(pending[0].ID), types.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Resolved)

	assert.Equal(t, types.GroupPartial, s.Group(group.ID).Status())
	assert.Len(t, s.Pending(group.ID), len(pending)-1)

	// Remaining hunks' spans still cover their text after the mutation.
	for _, h := range s.Pending(group.ID) {
		assert.Equal(t, h.Text, d.Slice(h.Span))
	}
}

func TestResolveAllTarget(t *testing.T) {
	d := doc.New("first line\nsecond line")
	g1 := applyRewrite(t, d, types.Span{From: 0, To: 10}, "1st line")
	s := NewStore(d)
	s.Resync()

	out, err := Resolve(d, s, AllTarget(), types.DecisionAccept)
	require.NoError(t, err)
	assert.True(t, out.Applied())
	assert.Equal(t, "1st line\nsecond line", d.Text())
	assert.Equal(t, types.GroupResolved, s.Group(g1.ID).Status())
	assert.False(t, s.HasPending())
}

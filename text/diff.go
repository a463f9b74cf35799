package text

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"redline/types"
)

// Segment is one contiguous diff operation between original and proposed
// text. A segment carries no document position; positions are assigned when
// the segment is overlaid on a document span.
type Segment struct {
	Kind types.Kind
	Text string
}

// Diff computes the ordered segments that turn original into proposed. It is
// total: any pair of strings, including empty ones, yields a valid sequence.
//
// The result satisfies the round-trip invariant: concatenating the Equal and
// Delete segments reconstructs original exactly, and concatenating the Equal
// and Insert segments reconstructs proposed exactly.
//
// Boundaries are semantically cleaned so that edits land on word-level
// boundaries where one is available, rather than single-character noise
// (e.g. "World" -> "Universe" is one delete and one insert, not a pile of
// shared-letter fragments).
func Diff(original, proposed string) []Segment {
	if original == proposed {
		if original == "" {
			return nil
		}
		return []Segment{{Kind: types.Equal, Text: original}}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, proposed, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segs := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		kind := kindForOp(d.Type)
		// Cleanup can leave adjacent segments of the same kind; coalesce them
		// so every segment is maximal.
		if n := len(segs); n > 0 && segs[n-1].Kind == kind {
			segs[n-1].Text += d.Text
			continue
		}
		segs = append(segs, Segment{Kind: kind, Text: d.Text})
	}
	return segs
}

func kindForOp(op diffmatchpatch.Operation) types.Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return types.Insert
	case diffmatchpatch.DiffDelete:
		return types.Delete
	default:
		return types.Equal
	}
}

// Original reconstructs the original text from a segment sequence.
func Original(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Kind != types.Insert {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Proposed reconstructs the proposed text from a segment sequence.
func Proposed(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Kind != types.Delete {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Similarity computes a similarity score between two strings (0.0 to 1.0)
// using Levenshtein ratio: 1 - (levenshtein_distance / max_length).
// Higher score means more similar. An empty string has 0 similarity with a
// non-empty one.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	// Without cleanup, chunked edit runs can sum to a distance larger than
	// the true Levenshtein distance, even exceeding the string length.
	diffs = dmp.DiffCleanupEfficiency(diffs)
	dist := dmp.DiffLevenshtein(diffs)

	// DiffLevenshtein counts runes, so the denominator must too.
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	ratio := 1.0 - float64(dist)/float64(maxLen)
	return min(1.0, max(0.0, ratio))
}

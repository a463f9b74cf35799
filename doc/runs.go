package doc

// Helpers for offset-addressed operations on run slices. All offsets are
// byte offsets into the concatenated run text.

func runsLen(runs []Run) int {
	n := 0
	for _, r := range runs {
		n += len(r.Text)
	}
	return n
}

func annEqual(a, b *Annotation) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// normalize drops empty runs and merges adjacent runs carrying the same
// annotation identity, so the run sequence is canonical after every commit.
func normalize(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && annEqual(out[n-1].Ann, r.Ann) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// cutBefore returns the runs covering [0, pos), splitting the run that
// straddles pos.
func cutBefore(runs []Run, pos int) []Run {
	var out []Run
	off := 0
	for _, r := range runs {
		end := off + len(r.Text)
		if end <= pos {
			out = append(out, r)
			off = end
			continue
		}
		if off < pos {
			out = append(out, Run{Text: r.Text[:pos-off], Ann: r.Ann})
		}
		break
	}
	return out
}

// cutAfter returns the runs covering [pos, end), splitting the run that
// straddles pos.
func cutAfter(runs []Run, pos int) []Run {
	var out []Run
	off := 0
	for _, r := range runs {
		end := off + len(r.Text)
		if end <= pos {
			off = end
			continue
		}
		if off < pos {
			out = append(out, Run{Text: r.Text[pos-off:], Ann: r.Ann})
		} else {
			out = append(out, r)
		}
		off = end
	}
	return out
}

// splice replaces the runs covering [from, to) with insert.
func splice(runs []Run, from, to int, insert []Run) []Run {
	out := append([]Run(nil), cutBefore(runs, from)...)
	out = append(out, insert...)
	return append(out, cutAfter(runs, to)...)
}

// clearRange strips annotations from the runs covering [from, to), keeping
// the text. Runs straddling a boundary are split so text outside the range
// keeps its annotation.
func clearRange(runs []Run, from, to int) []Run {
	var out []Run
	off := 0
	for _, r := range runs {
		end := off + len(r.Text)
		if end <= from || off >= to || r.Ann == nil {
			out = append(out, r)
			off = end
			continue
		}
		if off < from {
			out = append(out, Run{Text: r.Text[:from-off], Ann: r.Ann})
		}
		lo, hi := max(off, from), min(end, to)
		out = append(out, Run{Text: r.Text[lo-off : hi-off]})
		if end > to {
			out = append(out, Run{Text: r.Text[to-off:], Ann: r.Ann})
		}
		off = end
	}
	return out
}

package types

import "time"

// Kind identifies the role of a diff segment or overlay annotation.
type Kind int

const (
	Equal Kind = iota
	Insert
	Delete
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Status is the review state of a single hunk.
type Status int

const (
	StatusPending Status = iota
	StatusAccepted
	StatusRejected
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is a reviewer's verdict on one or more hunks.
type Decision int

const (
	DecisionAccept Decision = iota
	DecisionReject
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Span is a half-open [From, To) byte-offset range into the document text.
// A span is valid only until the next document mutation; after that it must
// be treated as stale unless explicitly remapped.
type Span struct {
	From int
	To   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.To - s.From }

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos int) bool { return pos >= s.From && pos < s.To }

// Hunk is one contiguous diff operation overlaid on the document as a
// reviewable suggestion. Equal segments never become hunks; only Insert and
// Delete do.
type Hunk struct {
	ID      string
	GroupID string
	Kind    Kind
	Text    string
	Span    Span
	Status  Status
}

// GroupStatus is the aggregate review state of a suggestion group.
type GroupStatus int

const (
	GroupPending GroupStatus = iota
	GroupPartial
	GroupResolved
)

// String returns the string representation of a GroupStatus.
func (s GroupStatus) String() string {
	switch s {
	case GroupPending:
		return "pending"
	case GroupPartial:
		return "partial"
	case GroupResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Group is the batch of hunks produced by one rewrite request. Hunks are
// ordered by original document position and are resolved individually or as
// a unit.
type Group struct {
	ID        string
	Hunks     []*Hunk
	CreatedAt time.Time
}

// Status derives the group's aggregate state from its hunks: GroupResolved
// iff every hunk is non-pending.
func (g *Group) Status() GroupStatus {
	if len(g.Hunks) == 0 {
		return GroupResolved
	}
	pending := 0
	for _, h := range g.Hunks {
		if h.Status == StatusPending {
			pending++
		}
	}
	switch pending {
	case 0:
		return GroupResolved
	case len(g.Hunks):
		return GroupPending
	default:
		return GroupPartial
	}
}

// Pending returns the hunks still awaiting a decision, in document order.
func (g *Group) Pending() []*Hunk {
	var pending []*Hunk
	for _, h := range g.Hunks {
		if h.Status == StatusPending {
			pending = append(pending, h)
		}
	}
	return pending
}

// Hunk returns the hunk with the given id, or nil.
func (g *Group) Hunk(id string) *Hunk {
	for _, h := range g.Hunks {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// Progress describes how far a review has advanced through a group.
type Progress struct {
	CurrentIndex   int // index into the pending subsequence, 0-based
	TotalInGroup   int
	PendingInGroup int
}

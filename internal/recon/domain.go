package recon

import "time"

// Kind enumerates exception kinds.
type Kind string

const (
	// KindReview flags an ambiguous or tentative match for confirmation.
	KindReview Kind = "REVIEW"
	// KindUnmapped flags a transaction matching no due at all.
	KindUnmapped Kind = "UNMAPPED"
	// KindDuplicate flags a payment attempt against an already-settled due.
	KindDuplicate Kind = "DUPLICATE"
)

// ExceptionItem is a flagged condition requiring human attention. At most one
// exists per (month, kind, transaction), so re-running reconciliation never
// duplicates findings. References are identifiers, not object graph pointers.
type ExceptionItem struct {
	ID                 int64      `json:"id"`
	Month              time.Time  `json:"month"`
	Kind               Kind       `json:"kind"`
	TxnUID             string     `json:"txn_uid"`
	SuggestedMemberID  string     `json:"suggested_member_id,omitempty"`
	CandidateMemberIDs []string   `json:"candidate_member_ids,omitempty"`
	Reason             string     `json:"reason"`
	IsResolved         bool       `json:"is_resolved"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes    string     `json:"resolution_notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Summary reports what a reconciliation run newly accomplished. Counts cover
// freshly created links and exceptions only; an immediate re-run over
// unchanged data reports all zeros.
type Summary struct {
	AutoPaid  int `json:"auto_paid"`
	Review    int `json:"review"`
	Unmapped  int `json:"unmapped"`
	Duplicate int `json:"duplicate"`
}

// ExceptionFilter narrows exception listings.
type ExceptionFilter struct {
	Month    time.Time
	Kind     Kind
	Resolved *bool
	Limit    int
}

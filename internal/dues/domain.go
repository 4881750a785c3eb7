package dues

import "time"

// Status enumerates due statuses.
type Status string

const (
	// StatusDue marks an open expectation of payment.
	StatusDue Status = "DUE"
	// StatusPaid marks a settled due. PAID dues are immutable to batch runs.
	StatusPaid Status = "PAID"
	// StatusReview marks a tentative match awaiting human confirmation.
	StatusReview Status = "REVIEW"
)

// Due is one member's expected payment for one month. Exactly one Due exists
// per (month, member). MatchedTxnUID references a transaction by fingerprint;
// empty means unlinked.
type Due struct {
	ID            int64
	Month         time.Time
	MemberID      string
	AmountDue     int64
	ReferenceCode string
	Status        Status
	MatchedTxnUID string
	PaidDate      *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Linked reports whether a transaction has been matched to this due,
// tentatively or finally. Linked dues are excluded from automatic matching.
func (d Due) Linked() bool {
	return d.MatchedTxnUID != ""
}

// ListFilter narrows due listings.
type ListFilter struct {
	Month  time.Time
	Status Status
	Limit  int
}

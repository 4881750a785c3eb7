package members

import "time"

// Member is a dues-paying society member. MemberID is the business
// identifier embedded in reference codes; it is stored uppercased.
type Member struct {
	ID            int64
	MemberID      string
	Name          string
	Phone         string
	MonthlyAmount int64
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MemberInput carries fields for creating or updating a member.
type MemberInput struct {
	MemberID      string
	Name          string
	Phone         string
	MonthlyAmount int64
}

// ListFilter narrows member listings.
type ListFilter struct {
	ActiveOnly bool
	Search     string
	Limit      int
}

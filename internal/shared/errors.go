package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrMonthFormat indicates a month string that is not YYYY-MM.
	ErrMonthFormat = errors.New("month must be in YYYY-MM format")
	// ErrMonthLocked indicates another batch run holds the month lock.
	ErrMonthLocked = errors.New("month is locked by another run")
)

// UserSafeMessage maps internal errors to messages safe to surface to
// API clients.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Record not found."
	case errors.Is(err, ErrMonthFormat):
		return "Month must be given as YYYY-MM."
	case errors.Is(err, ErrMonthLocked):
		return "A batch run for this month is already in progress."
	default:
		return "Something went wrong. Please try again."
	}
}

package shared

import (
	"fmt"
	"strings"
	"time"
)

// Month boundary formats. Callers pass YYYY-MM; reference codes embed YYYYMM.
const (
	monthLayout    = "2006-01"
	monthKeyLayout = "200601"
)

// ParseMonth parses a YYYY-MM string into the first day of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMonthFormat, s)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// NormalizeMonth truncates any date to the first day of its month in UTC.
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey renders the YYYYMM key used as the reference code suffix.
func MonthKey(month time.Time) string {
	return month.Format(monthKeyLayout)
}

// FormatMonth renders the YYYY-MM boundary representation.
func FormatMonth(month time.Time) string {
	return month.Format(monthLayout)
}

// ReferenceCode builds the due reference code for a member and month,
// e.g. M001-202601.
func ReferenceCode(memberID string, month time.Time) string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(memberID), MonthKey(month))
}

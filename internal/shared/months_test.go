package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	month, err := ParseMonth("2026-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), month)

	month, err = ParseMonth(" 2025-12 ")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), month)
}

func TestParseMonthRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "2026", "2026-13", "01-2026", "2026-1", "jan 2026"} {
		_, err := ParseMonth(s)
		require.ErrorIs(t, err, ErrMonthFormat, "input %q", s)
	}
}

func TestMonthKey(t *testing.T) {
	month := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "202601", MonthKey(month))
	require.Equal(t, "2026-01", FormatMonth(month))
}

func TestNormalizeMonth(t *testing.T) {
	d := time.Date(2026, time.March, 17, 13, 45, 0, 0, time.Local)
	require.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), NormalizeMonth(d))
}

func TestReferenceCode(t *testing.T) {
	month := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "M001-202601", ReferenceCode("m001", month))
}

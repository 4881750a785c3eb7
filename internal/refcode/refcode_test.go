package refcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFindsTokensInScanOrder(t *testing.T) {
	refs := Extract("UPI rent M001-202601 then m002-202601 thanks")
	require.Equal(t, []string{"M001-202601", "M002-202601"}, refs)
}

func TestExtractUppercasesInput(t *testing.T) {
	refs := Extract("payment from m_17b-202512")
	require.Equal(t, []string{"M_17B-202512"}, refs)
}

func TestExtractIgnoresMalformedTokens(t *testing.T) {
	require.Empty(t, Extract("no refs here"))
	require.Empty(t, Extract("M001-2026 short month"))
	require.Empty(t, Extract(""))
}

func TestExtractRestartable(t *testing.T) {
	text := "M001-202601"
	first := Extract(text)
	second := Extract(text)
	require.Equal(t, first, second)
}

func TestExtractForMonthDropsCrossMonthTokens(t *testing.T) {
	text := "carry-over M001-202512 and current M001-202601"
	refs := ExtractForMonth(text, "202601")
	require.Equal(t, []string{"M001-202601"}, refs)

	require.Empty(t, ExtractForMonth(text, "202602"))
}

func TestExtractLongMemberSegmentTruncatesToGrammar(t *testing.T) {
	// 21-character member segments are not valid tokens; the scanner still
	// finds the longest conforming tail.
	refs := Extract("XABCDEFGHIJKLMNOPQRSTU-202601")
	require.Len(t, refs, 1)
	require.Equal(t, "BCDEFGHIJKLMNOPQRSTU-202601", refs[0])
}

package recon

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

// UNMAPPED and DUPLICATE exceptions carry no candidates. Their list must
// still reach the store as an empty array, never as NULL.
func TestCandidateArrayEncodesEmptyNotNull(t *testing.T) {
	m := pgtype.NewMap()
	plan := m.PlanEncode(pgtype.TextArrayOID, pgtype.TextFormatCode, []string(nil))
	require.NotNil(t, plan)

	buf, err := plan.Encode([]string(nil), nil)
	require.NoError(t, err)
	require.Nil(t, buf)

	buf, err = plan.Encode(candidateArray(nil), nil)
	require.NoError(t, err)
	require.NotNil(t, buf)
	require.Equal(t, "{}", string(buf))
}

func TestCandidateArrayPreservesOrderedIDs(t *testing.T) {
	ids := []string{"M001", "M002"}
	require.Equal(t, ids, candidateArray(ids))
	require.Empty(t, candidateArray(nil))
	require.NotNil(t, candidateArray(nil))
}

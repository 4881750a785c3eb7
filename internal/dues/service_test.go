package dues

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duesdesk/duesdesk/internal/members"
	"github.com/duesdesk/duesdesk/internal/shared"
)

type memoryDueStore struct {
	members []members.Member
	dues    map[string]*Due
	nextID  int64
}

func newMemoryDueStore() *memoryDueStore {
	return &memoryDueStore{dues: make(map[string]*Due)}
}

func dueKey(month time.Time, memberID string) string {
	return shared.MonthKey(month) + "|" + memberID
}

func (s *memoryDueStore) WithinTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, s)
}

func (s *memoryDueStore) ListActiveMembers(ctx context.Context) ([]members.Member, error) {
	var out []members.Member
	for _, m := range s.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func (s *memoryDueStore) ListDuesByMonth(ctx context.Context, month time.Time) ([]Due, error) {
	var out []Due
	for _, d := range s.dues {
		if d.Month.Equal(month) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func (s *memoryDueStore) InsertDue(ctx context.Context, due Due) (bool, error) {
	key := dueKey(due.Month, due.MemberID)
	if _, ok := s.dues[key]; ok {
		return false, nil
	}
	s.nextID++
	due.ID = s.nextID
	s.dues[key] = &due
	return true, nil
}

func (s *memoryDueStore) UpdateDueAmountRef(ctx context.Context, id int64, amountDue int64, referenceCode string) error {
	for _, d := range s.dues {
		if d.ID == id && d.Status != StatusPaid {
			d.AmountDue = amountDue
			d.ReferenceCode = referenceCode
		}
	}
	return nil
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func activeMember(id string, amount int64) members.Member {
	return members.Member{MemberID: id, Name: id, MonthlyAmount: amount, IsActive: true}
}

func TestEnsureDuesCreatesOnePerActiveMember(t *testing.T) {
	store := newMemoryDueStore()
	store.members = []members.Member{
		activeMember("M001", 200),
		activeMember("M002", 150),
		{MemberID: "M003", Name: "gone", MonthlyAmount: 100, IsActive: false},
	}
	svc := NewService(store, nil, nil)

	touched, err := svc.EnsureDuesForMonth(context.Background(), month(2026, time.January))
	require.NoError(t, err)
	require.Equal(t, 2, touched)

	list, err := store.ListDuesByMonth(context.Background(), month(2026, time.January))
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "M001-202601", list[0].ReferenceCode)
	require.Equal(t, int64(200), list[0].AmountDue)
	require.Equal(t, StatusDue, list[0].Status)
	require.Equal(t, "M002-202601", list[1].ReferenceCode)
}

func TestEnsureDuesIdempotent(t *testing.T) {
	store := newMemoryDueStore()
	store.members = []members.Member{activeMember("M001", 200)}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	touched, err := svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)
	require.Equal(t, 1, touched)

	touched, err = svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)
	require.Equal(t, 0, touched)
}

func TestEnsureDuesReconcilesDrift(t *testing.T) {
	store := newMemoryDueStore()
	store.members = []members.Member{activeMember("M001", 200)}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)

	// Monthly amount changed after generation.
	store.members[0].MonthlyAmount = 250

	touched, err := svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)
	require.Equal(t, 1, touched)

	list, _ := store.ListDuesByMonth(ctx, month(2026, time.January))
	require.Equal(t, int64(250), list[0].AmountDue)
}

func TestEnsureDuesNeverTouchesPaid(t *testing.T) {
	store := newMemoryDueStore()
	store.members = []members.Member{activeMember("M001", 200)}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)

	d := store.dues[dueKey(month(2026, time.January), "M001")]
	d.Status = StatusPaid
	d.MatchedTxnUID = "abc123"

	store.members[0].MonthlyAmount = 999

	touched, err := svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)
	require.Equal(t, 0, touched)
	require.Equal(t, int64(200), d.AmountDue)
	require.Equal(t, "M001-202601", d.ReferenceCode)
	require.Equal(t, StatusPaid, d.Status)
}

func TestEnsureDuesKeepsHistoricalDuesForDeactivatedMembers(t *testing.T) {
	store := newMemoryDueStore()
	store.members = []members.Member{activeMember("M001", 200)}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.EnsureDuesForMonth(ctx, month(2026, time.January))
	require.NoError(t, err)

	store.members[0].IsActive = false

	touched, err := svc.EnsureDuesForMonth(ctx, month(2026, time.February))
	require.NoError(t, err)
	require.Equal(t, 0, touched)

	// January's due is untouched by deactivation.
	jan, _ := store.ListDuesByMonth(ctx, month(2026, time.January))
	require.Len(t, jan, 1)
}

func TestEnsureDuesNormalizesMonth(t *testing.T) {
	store := newMemoryDueStore()
	store.members = []members.Member{activeMember("M001", 200)}
	svc := NewService(store, nil, nil)

	midMonth := time.Date(2026, time.January, 17, 10, 30, 0, 0, time.UTC)
	_, err := svc.EnsureDuesForMonth(context.Background(), midMonth)
	require.NoError(t, err)

	list, _ := store.ListDuesByMonth(context.Background(), month(2026, time.January))
	require.Len(t, list, 1)
}

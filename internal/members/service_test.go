package members

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duesdesk/duesdesk/internal/shared"
)

type memoryMemberRepo struct {
	byID   map[string]*Member
	nextID int64
}

func newMemoryMemberRepo() *memoryMemberRepo {
	return &memoryMemberRepo{byID: make(map[string]*Member)}
}

func (r *memoryMemberRepo) CreateMember(ctx context.Context, input MemberInput) (*Member, error) {
	if _, ok := r.byID[input.MemberID]; ok {
		return nil, ErrDuplicateMemberID
	}
	r.nextID++
	m := &Member{
		ID:            r.nextID,
		MemberID:      input.MemberID,
		Name:          input.Name,
		Phone:         input.Phone,
		MonthlyAmount: input.MonthlyAmount,
		IsActive:      true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	r.byID[m.MemberID] = m
	return m, nil
}

func (r *memoryMemberRepo) UpdateMember(ctx context.Context, memberID string, input MemberInput) (*Member, error) {
	m, ok := r.byID[memberID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	m.Name = input.Name
	m.Phone = input.Phone
	m.MonthlyAmount = input.MonthlyAmount
	m.UpdatedAt = time.Now()
	return m, nil
}

func (r *memoryMemberRepo) SetMemberActive(ctx context.Context, memberID string, active bool) error {
	m, ok := r.byID[memberID]
	if !ok {
		return shared.ErrNotFound
	}
	m.IsActive = active
	return nil
}

func (r *memoryMemberRepo) GetMember(ctx context.Context, memberID string) (*Member, error) {
	m, ok := r.byID[memberID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *memoryMemberRepo) ListMembers(ctx context.Context, filter ListFilter) ([]Member, error) {
	var out []Member
	for _, m := range r.byID {
		if filter.ActiveOnly && !m.IsActive {
			continue
		}
		if filter.Search != "" && !strings.Contains(m.MemberID, strings.ToUpper(filter.Search)) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func TestCreateMemberNormalizesID(t *testing.T) {
	svc := NewService(newMemoryMemberRepo())
	m, err := svc.CreateMember(context.Background(), MemberInput{
		MemberID:      " m001 ",
		Name:          "Asha",
		MonthlyAmount: 200,
	})
	require.NoError(t, err)
	require.Equal(t, "M001", m.MemberID)
	require.True(t, m.IsActive)
}

func TestCreateMemberRejectsBadInput(t *testing.T) {
	svc := NewService(newMemoryMemberRepo())
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, MemberInput{MemberID: "M 01", Name: "x", MonthlyAmount: 200})
	require.Error(t, err)

	_, err = svc.CreateMember(ctx, MemberInput{MemberID: "M001", Name: "", MonthlyAmount: 200})
	require.Error(t, err)

	_, err = svc.CreateMember(ctx, MemberInput{MemberID: "M001", Name: "Asha", MonthlyAmount: 0})
	require.Error(t, err)

	_, err = svc.CreateMember(ctx, MemberInput{MemberID: strings.Repeat("X", 21), Name: "Asha", MonthlyAmount: 200})
	require.Error(t, err)
}

func TestDeactivateKeepsMember(t *testing.T) {
	repo := newMemoryMemberRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, MemberInput{MemberID: "M001", Name: "Asha", MonthlyAmount: 200})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateMember(ctx, "m001"))

	m, err := svc.GetMember(ctx, "M001")
	require.NoError(t, err)
	require.False(t, m.IsActive)

	active, err := svc.ListMembers(ctx, ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestListMembersOrderedByMemberID(t *testing.T) {
	repo := newMemoryMemberRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, id := range []string{"M010", "M002", "M001"} {
		_, err := svc.CreateMember(ctx, MemberInput{MemberID: id, Name: "n", MonthlyAmount: 100})
		require.NoError(t, err)
	}

	list, err := svc.ListMembers(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "M001", list[0].MemberID)
	require.Equal(t, "M002", list[1].MemberID)
	require.Equal(t, "M010", list[2].MemberID)
}

package members

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RepositoryPort defines data access methods for members.
type RepositoryPort interface {
	CreateMember(ctx context.Context, input MemberInput) (*Member, error)
	UpdateMember(ctx context.Context, memberID string, input MemberInput) (*Member, error)
	SetMemberActive(ctx context.Context, memberID string, active bool) error
	GetMember(ctx context.Context, memberID string) (*Member, error)
	ListMembers(ctx context.Context, filter ListFilter) ([]Member, error)
}

// Member IDs share the grammar of the reference-code member segment.
var memberIDPattern = regexp.MustCompile(`^[A-Z0-9_]{1,20}$`)

// ErrDuplicateMemberID indicates the business identifier is already taken.
var ErrDuplicateMemberID = errors.New("members: member id already exists")

// Service handles member registry logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// NormalizeMemberID uppercases and trims a business identifier.
func NormalizeMemberID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func validateInput(input *MemberInput) error {
	input.MemberID = NormalizeMemberID(input.MemberID)
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	if !memberIDPattern.MatchString(input.MemberID) {
		return fmt.Errorf("members: member id %q must be 1-20 alphanumeric/underscore characters", input.MemberID)
	}
	if input.Name == "" {
		return errors.New("members: name required")
	}
	if input.MonthlyAmount <= 0 {
		return errors.New("members: monthly amount must be positive")
	}
	return nil
}

// CreateMember registers a new member.
func (s *Service) CreateMember(ctx context.Context, input MemberInput) (*Member, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	return s.repo.CreateMember(ctx, input)
}

// UpdateMember edits name, phone and monthly amount. The business identifier
// itself is immutable: historical reference codes embed it.
func (s *Service) UpdateMember(ctx context.Context, memberID string, input MemberInput) (*Member, error) {
	memberID = NormalizeMemberID(memberID)
	input.MemberID = memberID
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	return s.repo.UpdateMember(ctx, memberID, input)
}

// DeactivateMember flags a member inactive. Historical dues are kept.
func (s *Service) DeactivateMember(ctx context.Context, memberID string) error {
	return s.repo.SetMemberActive(ctx, NormalizeMemberID(memberID), false)
}

// ActivateMember re-enables a member for due generation.
func (s *Service) ActivateMember(ctx context.Context, memberID string) error {
	return s.repo.SetMemberActive(ctx, NormalizeMemberID(memberID), true)
}

// GetMember fetches one member by business identifier.
func (s *Service) GetMember(ctx context.Context, memberID string) (*Member, error) {
	return s.repo.GetMember(ctx, NormalizeMemberID(memberID))
}

// ListMembers returns members matching the filter.
func (s *Service) ListMembers(ctx context.Context, filter ListFilter) ([]Member, error) {
	return s.repo.ListMembers(ctx, filter)
}

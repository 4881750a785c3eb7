package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duesdesk/duesdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for members.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `id, member_id, name, phone, monthly_amount, is_active, created_at, updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.MemberID, &m.Name, &m.Phone, &m.MonthlyAmount, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMember inserts a new member.
func (r *Repository) CreateMember(ctx context.Context, input MemberInput) (*Member, error) {
	query := `
		INSERT INTO members (member_id, name, phone, monthly_amount, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		RETURNING ` + memberColumns

	m, err := scanMember(r.pool.QueryRow(ctx, query, input.MemberID, input.Name, input.Phone, input.MonthlyAmount))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateMemberID
		}
		return nil, err
	}
	return m, nil
}

// UpdateMember edits a member's mutable fields.
func (r *Repository) UpdateMember(ctx context.Context, memberID string, input MemberInput) (*Member, error) {
	query := `
		UPDATE members
		SET name = $2, phone = $3, monthly_amount = $4, updated_at = NOW()
		WHERE member_id = $1
		RETURNING ` + memberColumns

	return scanMember(r.pool.QueryRow(ctx, query, memberID, input.Name, input.Phone, input.MonthlyAmount))
}

// SetMemberActive toggles the active flag. Deactivation never deletes dues.
func (r *Repository) SetMemberActive(ctx context.Context, memberID string, active bool) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE members SET is_active = $2, updated_at = NOW() WHERE member_id = $1`,
		memberID, active,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetMember retrieves one member by business identifier.
func (r *Repository) GetMember(ctx context.Context, memberID string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1`
	return scanMember(r.pool.QueryRow(ctx, query, memberID))
}

// ListMembers returns members with optional filtering, ordered by member_id.
func (r *Repository) ListMembers(ctx context.Context, filter ListFilter) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.ActiveOnly {
		query += " AND is_active"
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (member_id ILIKE $%d OR name ILIKE $%d OR phone ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	query += " ORDER BY member_id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.MemberID, &m.Name, &m.Phone, &m.MonthlyAmount, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package dues

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duesdesk/duesdesk/internal/members"
	"github.com/duesdesk/duesdesk/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL backed persistence for the due ledger.
type Repository struct {
	pool *pgxpool.Pool
	q    querier
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, q: pool}
}

// WithinTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithinTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{pool: r.pool, q: tx})
	})
}

// ListActiveMembers returns active members ordered by member_id.
func (r *Repository) ListActiveMembers(ctx context.Context) ([]members.Member, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, member_id, name, phone, monthly_amount, is_active, created_at, updated_at
		FROM members
		WHERE is_active
		ORDER BY member_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []members.Member
	for rows.Next() {
		var m members.Member
		if err := rows.Scan(&m.ID, &m.MemberID, &m.Name, &m.Phone, &m.MonthlyAmount, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListDuesByMonth returns the month's dues ordered by member_id.
func (r *Repository) ListDuesByMonth(ctx context.Context, month time.Time) ([]Due, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, month, member_id, amount_due, reference_code, status,
			matched_txn_uid, paid_date, notes, created_at, updated_at
		FROM dues
		WHERE month = $1
		ORDER BY member_id`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Due
	for rows.Next() {
		var d Due
		var matched pgtype.Text
		var paidDate pgtype.Date
		if err := rows.Scan(&d.ID, &d.Month, &d.MemberID, &d.AmountDue, &d.ReferenceCode, &d.Status,
			&matched, &paidDate, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if matched.Valid {
			d.MatchedTxnUID = matched.String
		}
		if paidDate.Valid {
			t := paidDate.Time
			d.PaidDate = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertDue inserts a due unless the (month, member) pair already exists.
func (r *Repository) InsertDue(ctx context.Context, due Due) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO dues (month, member_id, amount_due, reference_code, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', NOW(), NOW())
		ON CONFLICT (month, member_id) DO NOTHING`,
		due.Month, due.MemberID, due.AmountDue, due.ReferenceCode, due.Status,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateDueAmountRef reconciles drifted amount and reference code. PAID dues
// are guarded here as well as in the service.
func (r *Repository) UpdateDueAmountRef(ctx context.Context, id int64, amountDue int64, referenceCode string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE dues
		SET amount_due = $2, reference_code = $3, updated_at = NOW()
		WHERE id = $1 AND status <> 'PAID'`,
		id, amountDue, referenceCode,
	)
	return err
}

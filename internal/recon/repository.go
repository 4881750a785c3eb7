package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/ingest"
	"github.com/duesdesk/duesdesk/internal/platform/db"
	"github.com/duesdesk/duesdesk/internal/shared"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL backed persistence for reconciliation runs
// and the exception store.
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

// ListDuesByMonth returns the month's dues ordered by member_id.
func (r *Repository) ListDuesByMonth(ctx context.Context, month time.Time) ([]dues.Due, error) {
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

	var out []dues.Due
	for rows.Next() {
		var d dues.Due
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

// ListTransactionsOrdered returns all transactions, earliest evidence first.
func (r *Repository) ListTransactionsOrdered(ctx context.Context) ([]ingest.Transaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT txn_uid, original_txn_id, txn_date, amount, description, source, imported_at
		FROM transactions
		ORDER BY txn_date, imported_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ingest.Transaction
	for rows.Next() {
		var t ingest.Transaction
		if err := rows.Scan(&t.TxnUID, &t.OriginalTxnID, &t.TxnDate, &t.Amount, &t.Description, &t.Source, &t.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkDuePaid settles a due against a transaction.
func (r *Repository) MarkDuePaid(ctx context.Context, dueID int64, txnUID string, paidDate time.Time) error {
	result, err := r.q.Exec(ctx, `
		UPDATE dues
		SET status = 'PAID', matched_txn_uid = $2, paid_date = $3, updated_at = NOW()
		WHERE id = $1 AND status <> 'PAID'`,
		dueID, txnUID, paidDate,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("recon: due %d not open for settlement", dueID)
	}
	return nil
}

// MarkDueReview tentatively links a transaction to a due.
func (r *Repository) MarkDueReview(ctx context.Context, dueID int64, txnUID string) error {
	result, err := r.q.Exec(ctx, `
		UPDATE dues
		SET status = 'REVIEW', matched_txn_uid = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'PAID' AND matched_txn_uid IS NULL`,
		dueID, txnUID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("recon: due %d not open for review link", dueID)
	}
	return nil
}

// candidateArray keeps the candidate list a real array on the wire. A nil
// slice would encode as SQL NULL and violate the NOT NULL column.
func candidateArray(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// InsertExceptionIfAbsent records an exception unless the (month, kind,
// transaction) key already exists.
func (r *Repository) InsertExceptionIfAbsent(ctx context.Context, item ExceptionItem) (bool, error) {
	var suggested pgtype.Text
	if item.SuggestedMemberID != "" {
		suggested = pgtype.Text{String: item.SuggestedMemberID, Valid: true}
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO exception_items (month, kind, txn_uid, suggested_member_id, candidate_member_ids, reason, is_resolved, resolution_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, '', NOW())
		ON CONFLICT (month, kind, txn_uid) DO NOTHING`,
		item.Month, item.Kind, item.TxnUID, suggested, candidateArray(item.CandidateMemberIDs), item.Reason,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListExceptions returns exceptions with optional filtering, oldest first.
func (r *Repository) ListExceptions(ctx context.Context, filter ExceptionFilter) ([]ExceptionItem, error) {
	query := `
		SELECT id, month, kind, txn_uid, suggested_member_id, candidate_member_ids,
			reason, is_resolved, resolved_at, resolution_notes, created_at
		FROM exception_items
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if !filter.Month.IsZero() {
		query += fmt.Sprintf(" AND month = $%d", argNum)
		args = append(args, filter.Month)
		argNum++
	}
	if filter.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filter.Kind)
		argNum++
	}
	if filter.Resolved != nil {
		query += fmt.Sprintf(" AND is_resolved = $%d", argNum)
		args = append(args, *filter.Resolved)
		argNum++
	}

	query += " ORDER BY created_at, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExceptionItem
	for rows.Next() {
		var item ExceptionItem
		var suggested pgtype.Text
		var resolvedAt pgtype.Timestamptz
		if err := rows.Scan(&item.ID, &item.Month, &item.Kind, &item.TxnUID, &suggested, &item.CandidateMemberIDs,
			&item.Reason, &item.IsResolved, &resolvedAt, &item.ResolutionNotes, &item.CreatedAt); err != nil {
			return nil, err
		}
		if suggested.Valid {
			item.SuggestedMemberID = suggested.String
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			item.ResolvedAt = &t
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ResolveExceptions bulk-marks exceptions resolved. Returns rows changed.
func (r *Repository) ResolveExceptions(ctx context.Context, ids []int64, notes string) (int64, error) {
	result, err := r.q.Exec(ctx, `
		UPDATE exception_items
		SET is_resolved = TRUE, resolved_at = NOW(), resolution_notes = $2
		WHERE id = ANY($1) AND NOT is_resolved`,
		ids, notes,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// PromoteReviewDue settles a REVIEW due against its tentatively linked
// transaction. This is the explicit external action that moves REVIEW to
// PAID; automatic matching never does it.
func (r *Repository) PromoteReviewDue(ctx context.Context, dueID int64) error {
	result, err := r.q.Exec(ctx, `
		UPDATE dues
		SET status = 'PAID',
			paid_date = COALESCE((SELECT txn_date FROM transactions WHERE txn_uid = dues.matched_txn_uid), CURRENT_DATE),
			updated_at = NOW()
		WHERE id = $1 AND status = 'REVIEW' AND matched_txn_uid IS NOT NULL`,
		dueID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

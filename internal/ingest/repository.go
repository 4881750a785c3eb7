package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertTransaction inserts a transaction unless its fingerprint exists.
// The unique constraint on txn_uid makes concurrent duplicate ingests of the
// same file converge to one row.
func (r *Repository) InsertTransaction(ctx context.Context, txn Transaction) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (txn_uid, original_txn_id, txn_date, amount, description, source, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (txn_uid) DO NOTHING`,
		txn.TxnUID, txn.OriginalTxnID, txn.TxnDate, txn.Amount, txn.Description, txn.Source,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListTransactions returns transactions newest-first with optional filtering.
func (r *Repository) ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	query := `
		SELECT txn_uid, original_txn_id, txn_date, amount, description, source, imported_at
		FROM transactions
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, filter.Source)
		argNum++
	}

	query += " ORDER BY txn_date DESC, imported_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.TxnUID, &t.OriginalTxnID, &t.TxnDate, &t.Amount, &t.Description, &t.Source, &t.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

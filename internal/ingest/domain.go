package ingest

import (
	"fmt"
	"time"
)

// Transaction is an immutable fact about money received, imported from a
// bank/UPI statement. TxnUID is the content-derived fingerprint that keeps
// re-imports idempotent.
type Transaction struct {
	TxnUID        string
	OriginalTxnID string
	TxnDate       time.Time
	Amount        int64
	Description   string
	Source        string
	ImportedAt    time.Time
}

// ColumnMapping names the four logical statement columns in the CSV header.
type ColumnMapping struct {
	TxnID       string `yaml:"txn_id"`
	Date        string `yaml:"txn_date"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

// DefaultColumnMapping matches the statement layout most banks export.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		TxnID:       "txn_id",
		Date:        "txn_date",
		Amount:      "amount",
		Description: "description",
	}
}

// ParseError reports a malformed statement cell. Row numbering is 1-based
// over data rows, excluding the header.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ingest: row %d: bad %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	Source string
	Limit  int
}

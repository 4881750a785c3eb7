package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dateLayout is the single accepted statement date format. No sniffing.
const dateLayout = "2006-01-02"

// Store persists canonical transactions.
type Store interface {
	// InsertTransaction inserts unless the fingerprint already exists.
	// Returns false when the transaction was already present.
	InsertTransaction(ctx context.Context, txn Transaction) (bool, error)
}

// Service converts external statement rows into deduplicated transactions.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// IngestStatement reads a CSV statement with a header row and stores each row
// as a canonical transaction. Re-ingesting the same file is a no-op. The
// returned count is rows processed (inserted + skipped), not rows inserted.
// A malformed date or amount surfaces as a *ParseError and aborts the
// invocation; nothing is silently skipped.
func (s *Service) IngestStatement(ctx context.Context, r io.Reader, source string, mapping ColumnMapping) (int, error) {
	if source == "" {
		// Batch label so the import remains traceable even without one.
		source = "import-" + uuid.NewString()[:8]
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("ingest: read header: %w", err)
	}
	cols, err := resolveColumns(header, mapping)
	if err != nil {
		return 0, err
	}

	processed := 0
	inserted := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return processed, fmt.Errorf("ingest: read row %d: %w", processed+1, err)
		}

		txn, err := parseRow(record, cols, processed+1, source)
		if err != nil {
			return processed, err
		}

		created, err := s.store.InsertTransaction(ctx, txn)
		if err != nil {
			return processed, err
		}
		if created {
			inserted++
		}
		processed++
	}

	if s.logger != nil {
		s.logger.Info("statement ingested",
			slog.String("source", source),
			slog.Int("processed", processed),
			slog.Int("inserted", inserted),
		)
	}
	return processed, nil
}

type columnIndexes struct {
	txnID, date, amount, description int
}

func resolveColumns(header []string, mapping ColumnMapping) (columnIndexes, error) {
	idx := columnIndexes{txnID: -1, date: -1, amount: -1, description: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case mapping.TxnID:
			idx.txnID = i
		case mapping.Date:
			idx.date = i
		case mapping.Amount:
			idx.amount = i
		case mapping.Description:
			idx.description = i
		}
	}
	if idx.date == -1 {
		return idx, fmt.Errorf("ingest: header missing date column %q", mapping.Date)
	}
	if idx.amount == -1 {
		return idx, fmt.Errorf("ingest: header missing amount column %q", mapping.Amount)
	}
	return idx, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, cols columnIndexes, row int, source string) (Transaction, error) {
	originalID := cell(record, cols.txnID)
	if originalID == "" {
		originalID = fmt.Sprintf("ROW%d", row)
	}

	dateStr := cell(record, cols.date)
	txnDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return Transaction{}, &ParseError{Row: row, Field: "date", Value: dateStr, Err: err}
	}

	amountStr := cell(record, cols.amount)
	amountDec, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return Transaction{}, &ParseError{Row: row, Field: "amount", Value: amountStr, Err: err}
	}
	amount := int64(amountDec)
	if amount <= 0 {
		return Transaction{}, &ParseError{Row: row, Field: "amount", Value: amountStr, Err: errors.New("amount must be a positive integer")}
	}

	description := cell(record, cols.description)

	return Transaction{
		TxnUID:        MakeTxnUID(originalID, txnDate, amount, description, source),
		OriginalTxnID: originalID,
		TxnDate:       txnDate,
		Amount:        amount,
		Description:   description,
		Source:        source,
	}, nil
}

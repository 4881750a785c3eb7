package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryTxnStore struct {
	byUID map[string]Transaction
	order []string
}

func newMemoryTxnStore() *memoryTxnStore {
	return &memoryTxnStore{byUID: make(map[string]Transaction)}
}

func (s *memoryTxnStore) InsertTransaction(ctx context.Context, txn Transaction) (bool, error) {
	if _, ok := s.byUID[txn.TxnUID]; ok {
		return false, nil
	}
	txn.ImportedAt = time.Now()
	s.byUID[txn.TxnUID] = txn
	s.order = append(s.order, txn.TxnUID)
	return true, nil
}

const sampleStatement = `txn_id,txn_date,amount,description
UPI123,2026-01-05,200,rent M001-202601 jan
,2026-01-06,150,cash deposit
UPI125,2026-01-07,300.75,maintenance M003-202601
`

func TestIngestStatement(t *testing.T) {
	store := newMemoryTxnStore()
	svc := NewService(store, nil)

	processed, err := svc.IngestStatement(context.Background(), strings.NewReader(sampleStatement), "demo", DefaultColumnMapping())
	require.NoError(t, err)
	require.Equal(t, 3, processed)
	require.Len(t, store.byUID, 3)

	first := store.byUID[store.order[0]]
	require.Equal(t, "UPI123", first.OriginalTxnID)
	require.Equal(t, int64(200), first.Amount)
	require.Equal(t, "rent M001-202601 jan", first.Description)
	require.Equal(t, "demo", first.Source)
	require.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), first.TxnDate)

	// Blank external id gets a positional placeholder.
	second := store.byUID[store.order[1]]
	require.Equal(t, "ROW2", second.OriginalTxnID)

	// Decimal amounts are truncated to minor units.
	third := store.byUID[store.order[2]]
	require.Equal(t, int64(300), third.Amount)
}

func TestIngestStatementIdempotent(t *testing.T) {
	store := newMemoryTxnStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	processed, err := svc.IngestStatement(ctx, strings.NewReader(sampleStatement), "demo", DefaultColumnMapping())
	require.NoError(t, err)
	require.Equal(t, 3, processed)

	// Same file again: processed counts rows, the store gains nothing.
	processed, err = svc.IngestStatement(ctx, strings.NewReader(sampleStatement), "demo", DefaultColumnMapping())
	require.NoError(t, err)
	require.Equal(t, 3, processed)
	require.Len(t, store.byUID, 3)
}

func TestIngestStatementRejectsBadDate(t *testing.T) {
	svc := NewService(newMemoryTxnStore(), nil)

	csv := "txn_id,txn_date,amount,description\nX1,05/01/2026,200,rent\n"
	_, err := svc.IngestStatement(context.Background(), strings.NewReader(csv), "demo", DefaultColumnMapping())

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 1, parseErr.Row)
	require.Equal(t, "date", parseErr.Field)
}

func TestIngestStatementRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newMemoryTxnStore(), nil)
	ctx := context.Background()

	for _, amount := range []string{"0", "-50", "abc"} {
		csv := "txn_id,txn_date,amount,description\nX1,2026-01-05," + amount + ",rent\n"
		_, err := svc.IngestStatement(ctx, strings.NewReader(csv), "demo", DefaultColumnMapping())

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "amount %s", amount)
		require.Equal(t, "amount", parseErr.Field)
	}
}

func TestIngestStatementCustomMapping(t *testing.T) {
	store := newMemoryTxnStore()
	svc := NewService(store, nil)

	csv := "ref,date,value,narration\nB1,2026-01-05,500,donation\n"
	mapping := ColumnMapping{TxnID: "ref", Date: "date", Amount: "value", Description: "narration"}

	processed, err := svc.IngestStatement(context.Background(), strings.NewReader(csv), "bank", mapping)
	require.NoError(t, err)
	require.Equal(t, 1, processed)

	txn := store.byUID[store.order[0]]
	require.Equal(t, "B1", txn.OriginalTxnID)
	require.Equal(t, int64(500), txn.Amount)
	require.Equal(t, "donation", txn.Description)
}

func TestIngestStatementMissingAmountColumn(t *testing.T) {
	svc := NewService(newMemoryTxnStore(), nil)

	csv := "txn_id,txn_date,description\nX1,2026-01-05,rent\n"
	_, err := svc.IngestStatement(context.Background(), strings.NewReader(csv), "demo", DefaultColumnMapping())
	require.Error(t, err)
	require.Contains(t, err.Error(), "amount")
}

func TestIngestStatementSynthesizesSourceLabel(t *testing.T) {
	store := newMemoryTxnStore()
	svc := NewService(store, nil)

	csv := "txn_id,txn_date,amount,description\nX1,2026-01-05,200,rent\n"
	_, err := svc.IngestStatement(context.Background(), strings.NewReader(csv), "", DefaultColumnMapping())
	require.NoError(t, err)

	txn := store.byUID[store.order[0]]
	require.True(t, strings.HasPrefix(txn.Source, "import-"))
}

func TestMakeTxnUIDSensitivity(t *testing.T) {
	date := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	base := MakeTxnUID("X1", date, 200, "rent", "demo")
	require.Len(t, base, 16)

	require.Equal(t, base, MakeTxnUID("X1", date, 200, "rent", "demo"))

	require.NotEqual(t, base, MakeTxnUID("X2", date, 200, "rent", "demo"))
	require.NotEqual(t, base, MakeTxnUID("X1", date.AddDate(0, 0, 1), 200, "rent", "demo"))
	require.NotEqual(t, base, MakeTxnUID("X1", date, 201, "rent", "demo"))
	require.NotEqual(t, base, MakeTxnUID("X1", date, 200, "rent jan", "demo"))
	require.NotEqual(t, base, MakeTxnUID("X1", date, 200, "rent", "demo2"))
}

package recon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/ingest"
	"github.com/duesdesk/duesdesk/internal/refcode"
	"github.com/duesdesk/duesdesk/internal/shared"
)

// TxStore defines the data access methods available inside a reconciliation
// run. All of it executes within one atomic unit.
type TxStore interface {
	// ListDuesByMonth returns the month's dues ordered by member_id.
	ListDuesByMonth(ctx context.Context, month time.Time) ([]dues.Due, error)
	// ListTransactionsOrdered returns every stored transaction in ascending
	// (txn_date, imported_at) order, so the earliest evidence wins.
	ListTransactionsOrdered(ctx context.Context) ([]ingest.Transaction, error)
	// MarkDuePaid settles a due against a transaction.
	MarkDuePaid(ctx context.Context, dueID int64, txnUID string, paidDate time.Time) error
	// MarkDueReview tentatively links a transaction without settling.
	MarkDueReview(ctx context.Context, dueID int64, txnUID string) error
	// InsertExceptionIfAbsent records an exception unless one already exists
	// for the (month, kind, transaction) key. Returns false when skipped.
	InsertExceptionIfAbsent(ctx context.Context, item ExceptionItem) (bool, error)
}

// reconcile applies the tiered matching strategy for one month.
//
// Tier 1 matches extracted reference tokens against the month's dues; tier 2
// falls back to unique-amount matching; everything else becomes an UNMAPPED
// exception. Dues already linked to a transaction are excluded from automatic
// matching entirely, and transactions already linked for the month are
// skipped as settled work.
func reconcile(ctx context.Context, tx TxStore, month time.Time) (Summary, error) {
	var summary Summary

	monthKey := shared.MonthKey(month)

	dueList, err := tx.ListDuesByMonth(ctx, month)
	if err != nil {
		return summary, err
	}

	local := make([]*dues.Due, len(dueList))
	byRef := make(map[string]*dues.Due, len(dueList))
	linked := make(map[string]bool)
	for i := range dueList {
		d := &dueList[i]
		local[i] = d
		byRef[strings.ToUpper(d.ReferenceCode)] = d
		if d.Linked() {
			linked[d.MatchedTxnUID] = true
		}
	}

	txns, err := tx.ListTransactionsOrdered(ctx)
	if err != nil {
		return summary, err
	}

	for _, t := range txns {
		if linked[t.TxnUID] {
			continue
		}

		resolved, err := applyReferenceTier(ctx, tx, month, monthKey, t, byRef, &summary)
		if err != nil {
			return summary, err
		}
		if resolved {
			continue
		}

		if err := applyAmountTier(ctx, tx, month, t, local, &summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func applyReferenceTier(ctx context.Context, tx TxStore, month time.Time, monthKey string, t ingest.Transaction, byRef map[string]*dues.Due, summary *Summary) (bool, error) {
	for _, ref := range refcode.ExtractForMonth(t.Description, monthKey) {
		d, ok := byRef[ref]
		if !ok {
			continue
		}

		if d.Status == dues.StatusPaid || d.Linked() {
			created, err := tx.InsertExceptionIfAbsent(ctx, ExceptionItem{
				Month:  month,
				Kind:   KindDuplicate,
				TxnUID: t.TxnUID,
				Reason: fmt.Sprintf("Duplicate payment for %s", ref),
			})
			if err != nil {
				return false, err
			}
			if created {
				summary.Duplicate++
			}
			return true, nil
		}

		if err := tx.MarkDuePaid(ctx, d.ID, t.TxnUID, t.TxnDate); err != nil {
			return false, err
		}
		d.Status = dues.StatusPaid
		d.MatchedTxnUID = t.TxnUID
		paidDate := t.TxnDate
		d.PaidDate = &paidDate
		summary.AutoPaid++
		return true, nil
	}
	return false, nil
}

func applyAmountTier(ctx context.Context, tx TxStore, month time.Time, t ingest.Transaction, local []*dues.Due, summary *Summary) error {
	var candidates []*dues.Due
	for _, d := range local {
		if d.Linked() {
			continue
		}
		if (d.Status == dues.StatusDue || d.Status == dues.StatusReview) && d.AmountDue == t.Amount {
			candidates = append(candidates, d)
		}
	}

	switch len(candidates) {
	case 0:
		created, err := tx.InsertExceptionIfAbsent(ctx, ExceptionItem{
			Month:  month,
			Kind:   KindUnmapped,
			TxnUID: t.TxnUID,
			Reason: "No reference match and no amount match",
		})
		if err != nil {
			return err
		}
		if created {
			summary.Unmapped++
		}

	case 1:
		c := candidates[0]
		if err := tx.MarkDueReview(ctx, c.ID, t.TxnUID); err != nil {
			return err
		}
		c.Status = dues.StatusReview
		c.MatchedTxnUID = t.TxnUID

		created, err := tx.InsertExceptionIfAbsent(ctx, ExceptionItem{
			Month:              month,
			Kind:               KindReview,
			TxnUID:             t.TxnUID,
			SuggestedMemberID:  c.MemberID,
			CandidateMemberIDs: []string{c.MemberID},
			Reason:             "No reference; unique amount match",
		})
		if err != nil {
			return err
		}
		if created {
			summary.Review++
		}

	default:
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.MemberID)
		}
		// Ambiguity is never guessed: no due is mutated here.
		created, err := tx.InsertExceptionIfAbsent(ctx, ExceptionItem{
			Month:              month,
			Kind:               KindReview,
			TxnUID:             t.TxnUID,
			CandidateMemberIDs: ids,
			Reason:             "No reference; multiple candidates with same amount",
		})
		if err != nil {
			return err
		}
		if created {
			summary.Review++
		}
	}
	return nil
}

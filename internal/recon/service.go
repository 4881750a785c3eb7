package recon

import (
	"context"
	"log/slog"
	"time"

	"github.com/duesdesk/duesdesk/internal/shared"
)

// Store runs a reconciliation callback as one atomic unit.
type Store interface {
	WithinTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// Service matches imported transactions to expected dues for a month.
type Service struct {
	store  Store
	locker *shared.MonthLocker
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(store Store, locker *shared.MonthLocker, logger *slog.Logger) *Service {
	return &Service{store: store, locker: locker, logger: logger}
}

// ReconcileMonth consumes unmatched transactions and open dues for the month,
// settling what it can and recording exceptions for the rest. Dues must
// already be generated for the month; reconciliation never creates dues.
// Counts cover newly created work only, so a re-run over unchanged data
// returns all zeros. Any failure rolls the whole run back.
func (s *Service) ReconcileMonth(ctx context.Context, month time.Time) (Summary, error) {
	month = shared.NormalizeMonth(month)

	release, err := s.locker.Acquire(ctx, month)
	if err != nil {
		return Summary{}, err
	}
	defer release()

	var summary Summary
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		summary, err = reconcile(ctx, tx, month)
		return err
	})
	if err != nil {
		return Summary{}, err
	}

	if s.logger != nil {
		s.logger.Info("month reconciled",
			slog.String("month", shared.FormatMonth(month)),
			slog.Int("auto_paid", summary.AutoPaid),
			slog.Int("review", summary.Review),
			slog.Int("unmapped", summary.Unmapped),
			slog.Int("duplicate", summary.Duplicate),
		)
	}
	return summary, nil
}

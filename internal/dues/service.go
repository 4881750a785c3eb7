package dues

import (
	"context"
	"log/slog"
	"time"

	"github.com/duesdesk/duesdesk/internal/members"
	"github.com/duesdesk/duesdesk/internal/shared"
)

// TxStore defines the data access methods available inside a generation run.
type TxStore interface {
	// ListActiveMembers returns active members ordered by member_id.
	ListActiveMembers(ctx context.Context) ([]members.Member, error)
	// ListDuesByMonth returns all dues for a month ordered by member_id.
	ListDuesByMonth(ctx context.Context, month time.Time) ([]Due, error)
	// InsertDue inserts a due unless one already exists for (month, member).
	// Returns false when the row was already present.
	InsertDue(ctx context.Context, due Due) (bool, error)
	// UpdateDueAmountRef reconciles ledger drift on a non-PAID due.
	UpdateDueAmountRef(ctx context.Context, id int64, amountDue int64, referenceCode string) error
}

// Store runs a callback as one atomic unit against the due ledger.
type Store interface {
	WithinTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// Service generates the expected-payment ledger for a month.
type Service struct {
	store  Store
	locker *shared.MonthLocker
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(store Store, locker *shared.MonthLocker, logger *slog.Logger) *Service {
	return &Service{store: store, locker: locker, logger: logger}
}

// EnsureDuesForMonth guarantees every active member has exactly one due for
// the month with the current amount and reference code. Idempotent: a second
// run with no data changes touches zero rows. PAID dues are never modified.
func (s *Service) EnsureDuesForMonth(ctx context.Context, month time.Time) (int, error) {
	month = shared.NormalizeMonth(month)

	release, err := s.locker.Acquire(ctx, month)
	if err != nil {
		return 0, err
	}
	defer release()

	touched := 0
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx TxStore) error {
		active, err := tx.ListActiveMembers(ctx)
		if err != nil {
			return err
		}
		existing, err := tx.ListDuesByMonth(ctx, month)
		if err != nil {
			return err
		}
		byMember := make(map[string]Due, len(existing))
		for _, d := range existing {
			byMember[d.MemberID] = d
		}

		for _, m := range active {
			ref := shared.ReferenceCode(m.MemberID, month)

			d, ok := byMember[m.MemberID]
			if !ok {
				created, err := tx.InsertDue(ctx, Due{
					Month:         month,
					MemberID:      m.MemberID,
					AmountDue:     m.MonthlyAmount,
					ReferenceCode: ref,
					Status:        StatusDue,
				})
				if err != nil {
					return err
				}
				// A concurrent run may have inserted first; either way the
				// invariant holds and a lost race is not a touch.
				if created {
					touched++
				}
				continue
			}

			if d.Status == StatusPaid {
				continue
			}
			if d.AmountDue != m.MonthlyAmount || d.ReferenceCode != ref {
				if err := tx.UpdateDueAmountRef(ctx, d.ID, m.MonthlyAmount, ref); err != nil {
					return err
				}
				touched++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.logger != nil {
		s.logger.Info("dues ensured",
			slog.String("month", shared.FormatMonth(month)),
			slog.Int("touched", touched),
		)
	}
	return touched, nil
}

// ListDues returns dues matching the filter.
func (s *Service) ListDues(ctx context.Context, filter ListFilter) ([]Due, error) {
	var out []Due
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx TxStore) error {
		all, err := tx.ListDuesByMonth(ctx, shared.NormalizeMonth(filter.Month))
		if err != nil {
			return err
		}
		for _, d := range all {
			if filter.Status != "" && d.Status != filter.Status {
				continue
			}
			out = append(out, d)
			if filter.Limit > 0 && len(out) >= filter.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

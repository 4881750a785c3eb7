package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/recon"
	"github.com/duesdesk/duesdesk/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeEnsureDues generates or refreshes a month's due ledger.
	TaskTypeEnsureDues = "dues:ensure"
	// TaskTypeReconcile reconciles a month's transactions against its dues.
	TaskTypeReconcile = "recon:month"
)

// MonthPayload names the month a batch task operates on. An empty month
// means the current calendar month at execution time.
type MonthPayload struct {
	Month string `json:"month,omitempty"`
}

func (p MonthPayload) resolve(now time.Time) (time.Time, error) {
	if p.Month == "" {
		return shared.NormalizeMonth(now.UTC()), nil
	}
	return shared.ParseMonth(p.Month)
}

// NewEnsureDuesTask constructs an Asynq task for due generation.
func NewEnsureDuesTask(payload MonthPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEnsureDues, data), nil
}

// NewReconcileTask constructs an Asynq task for reconciliation.
func NewReconcileTask(payload MonthPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReconcile, data), nil
}

// NewEnsureDuesHandler processes TaskTypeEnsureDues tasks.
func NewEnsureDuesHandler(svc *dues.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload MonthPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		month, err := payload.resolve(time.Now())
		if err != nil {
			return asynq.SkipRetry
		}
		touched, err := svc.EnsureDuesForMonth(ctx, month)
		if err != nil {
			return err
		}
		logger.Info("scheduled dues run",
			slog.String("month", shared.FormatMonth(month)),
			slog.Int("touched", touched),
		)
		return nil
	}
}

// NewReconcileHandler processes TaskTypeReconcile tasks.
func NewReconcileHandler(svc *recon.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload MonthPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		month, err := payload.resolve(time.Now())
		if err != nil {
			return asynq.SkipRetry
		}
		summary, err := svc.ReconcileMonth(ctx, month)
		if err != nil {
			return err
		}
		logger.Info("scheduled reconciliation run",
			slog.String("month", shared.FormatMonth(month)),
			slog.Int("auto_paid", summary.AutoPaid),
			slog.Int("review", summary.Review),
			slog.Int("unmapped", summary.Unmapped),
			slog.Int("duplicate", summary.Duplicate),
		)
		return nil
	}
}

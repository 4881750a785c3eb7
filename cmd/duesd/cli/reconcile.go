package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/duesdesk/duesdesk/internal/recon"
	"github.com/duesdesk/duesdesk/internal/shared"
)

// ReconcileOptions configures the reconcile command.
type ReconcileOptions struct {
	Month      string
	JSONOutput bool
	Stdout     io.Writer
}

// RunReconcile reconciles a month's transactions against its dues and prints
// the run summary.
func RunReconcile(ctx context.Context, svc *recon.Service, opts ReconcileOptions) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	month, err := shared.ParseMonth(opts.Month)
	if err != nil {
		return err
	}

	summary, err := svc.ReconcileMonth(ctx, month)
	if err != nil {
		return err
	}

	if opts.JSONOutput {
		return json.NewEncoder(stdout).Encode(map[string]any{
			"month":   shared.FormatMonth(month),
			"summary": summary,
		})
	}
	_, err = fmt.Fprintf(stdout, "Reconcile %s => auto_paid=%d review=%d unmapped=%d duplicate=%d\n",
		shared.FormatMonth(month), summary.AutoPaid, summary.Review, summary.Unmapped, summary.Duplicate)
	return err
}

// Package cli implements the thin command surface over the batch entry
// points. Commands take option structs with injectable writers so they can
// be exercised without a process boundary.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/shared"
)

// EnsureDuesOptions configures the dues command.
type EnsureDuesOptions struct {
	Month      string
	JSONOutput bool
	Stdout     io.Writer
}

// RunEnsureDues generates or refreshes the due ledger for a month and prints
// the touched-row count.
func RunEnsureDues(ctx context.Context, svc *dues.Service, opts EnsureDuesOptions) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	month, err := shared.ParseMonth(opts.Month)
	if err != nil {
		return err
	}

	touched, err := svc.EnsureDuesForMonth(ctx, month)
	if err != nil {
		return err
	}

	if opts.JSONOutput {
		return json.NewEncoder(stdout).Encode(map[string]any{
			"month":   shared.FormatMonth(month),
			"touched": touched,
		})
	}
	_, err = fmt.Fprintf(stdout, "Dues ensured for %s. Rows touched: %d\n", shared.FormatMonth(month), touched)
	return err
}

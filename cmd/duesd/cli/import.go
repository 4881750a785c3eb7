package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/duesdesk/duesdesk/internal/ingest"
)

// ImportOptions configures the statement import command.
type ImportOptions struct {
	Filepath    string
	Source      string
	MappingPath string
	JSONOutput  bool
	Stdout      io.Writer
}

// RunImport ingests a statement CSV file and prints the processed-row count.
func RunImport(ctx context.Context, svc *ingest.Service, opts ImportOptions) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	mapping := ingest.DefaultColumnMapping()
	if opts.MappingPath != "" {
		var err error
		mapping, err = ingest.LoadColumnMapping(opts.MappingPath)
		if err != nil {
			return err
		}
	}

	f, err := os.Open(opts.Filepath)
	if err != nil {
		return fmt.Errorf("open statement file: %w", err)
	}
	defer f.Close()

	processed, err := svc.IngestStatement(ctx, f, opts.Source, mapping)
	if err != nil {
		return err
	}

	if opts.JSONOutput {
		return json.NewEncoder(stdout).Encode(map[string]any{
			"file":      opts.Filepath,
			"processed": processed,
		})
	}
	_, err = fmt.Fprintf(stdout, "Processed %d rows from %s\n", processed, opts.Filepath)
	return err
}

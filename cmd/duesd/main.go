package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duesdesk/duesdesk/cmd/duesd/cli"
	"github.com/duesdesk/duesdesk/internal/app"
	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/ingest"
	"github.com/duesdesk/duesdesk/internal/members"
	"github.com/duesdesk/duesdesk/internal/platform/cache"
	"github.com/duesdesk/duesdesk/internal/platform/db"
	"github.com/duesdesk/duesdesk/internal/recon"
	"github.com/duesdesk/duesdesk/internal/shared"
)

const usage = `duesd <command>

Commands:
  serve                      run the admin API server (default)
  dues <YYYY-MM>             ensure dues for a month
  import <file> [flags]      import a statement CSV
  reconcile <YYYY-MM>        reconcile a month
`

type runtimeDeps struct {
	cfg    *app.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	locker *shared.MonthLocker

	membersService *members.Service
	duesService    *dues.Service
	ingestService  *ingest.Service
	reconService   *recon.Service

	ingestRepo *ingest.Repository
	reconRepo  *recon.Repository

	close func()
}

func buildRuntime(ctx context.Context) (*runtimeDeps, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}

	// Redis backs the month lock. Batch commands still work without it in a
	// single-process deployment, so a missing redis only downgrades locking.
	var locker *shared.MonthLocker
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, month locking disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		locker = shared.NewMonthLocker(redisClient, cfg.RunLockTTL)
	}

	membersRepo := members.NewRepository(pool)
	duesRepo := dues.NewRepository(pool)
	ingestRepo := ingest.NewRepository(pool)
	reconRepo := recon.NewRepository(pool)

	deps := &runtimeDeps{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		locker:         locker,
		membersService: members.NewService(membersRepo),
		duesService:    dues.NewService(duesRepo, locker, logger),
		ingestService:  ingest.NewService(ingestRepo, logger),
		reconService:   recon.NewService(reconRepo, locker, logger),
		ingestRepo:     ingestRepo,
		reconRepo:      reconRepo,
		close: func() {
			pool.Close()
			if redisClient != nil {
				_ = redisClient.Close()
			}
		},
	}
	return deps, nil
}

func serve(ctx context.Context, deps *runtimeDeps) error {
	router := app.NewRouter(app.RouterParams{
		Logger:         deps.logger,
		Config:         deps.cfg,
		MembersHandler: members.NewHandler(deps.logger, deps.membersService),
		DuesHandler:    dues.NewHandler(deps.logger, deps.duesService),
		IngestHandler:  ingest.NewHandler(deps.logger, deps.ingestRepo, deps.ingestService),
		ReconHandler:   recon.NewHandler(deps.logger, deps.reconService, deps.reconRepo),
	})

	server := &http.Server{
		Addr:         deps.cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  deps.cfg.AppReadTimeout,
		WriteTimeout: deps.cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.logger.Info("admin api listening", slog.String("addr", deps.cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	deps, err := buildRuntime(ctx)
	if err != nil {
		slog.Default().Error("startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.close()

	if err := dispatch(ctx, deps, command, args); err != nil {
		deps.logger.Error("command failed", slog.String("command", command), slog.Any("error", err))
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, deps *runtimeDeps, command string, args []string) error {
	switch command {
	case "serve":
		return serve(ctx, deps)

	case "dues":
		fs := flag.NewFlagSet("dues", flag.ContinueOnError)
		jsonOut := fs.Bool("json", false, "emit JSON output")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: duesd dues <YYYY-MM>")
		}
		return cli.RunEnsureDues(ctx, deps.duesService, cli.EnsureDuesOptions{
			Month:      fs.Arg(0),
			JSONOutput: *jsonOut,
		})

	case "import":
		fs := flag.NewFlagSet("import", flag.ContinueOnError)
		source := fs.String("source", "", "import batch label")
		mappingPath := fs.String("mapping", "", "YAML column mapping file")
		jsonOut := fs.Bool("json", false, "emit JSON output")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: duesd import <file> [--source s] [--mapping file.yaml]")
		}
		return cli.RunImport(ctx, deps.ingestService, cli.ImportOptions{
			Filepath:    fs.Arg(0),
			Source:      *source,
			MappingPath: *mappingPath,
			JSONOutput:  *jsonOut,
		})

	case "reconcile":
		fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
		jsonOut := fs.Bool("json", false, "emit JSON output")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: duesd reconcile <YYYY-MM>")
		}
		return cli.RunReconcile(ctx, deps.reconService, cli.ReconcileOptions{
			Month:      fs.Arg(0),
			JSONOutput: *jsonOut,
		})

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/ingest"
	"github.com/duesdesk/duesdesk/internal/members"
	"github.com/duesdesk/duesdesk/internal/platform/httpx"
	"github.com/duesdesk/duesdesk/internal/recon"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	MembersHandler *members.Handler
	DuesHandler    *dues.Handler
	IngestHandler  *ingest.Handler
	ReconHandler   *recon.Handler
}

// NewRouter constructs the chi.Router with duesdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/members", params.MembersHandler.MountRoutes)
	r.Route("/dues", params.DuesHandler.MountRoutes)
	r.Route("/transactions", params.IngestHandler.MountRoutes)
	r.Route("/reconcile", params.ReconHandler.MountRoutes)

	return r
}

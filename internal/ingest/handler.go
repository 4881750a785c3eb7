package ingest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/duesdesk/duesdesk/internal/platform/httpx"
)

// Handler manages transaction browsing and import endpoints.
type Handler struct {
	logger  *slog.Logger
	repo    *Repository
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, service *Service) *Handler {
	return &Handler{logger: logger, repo: repo, service: service}
}

// MountRoutes registers transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listTransactions)
	r.Post("/import", h.importStatement)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Source: r.URL.Query().Get("source"), Limit: 200}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	list, err := h.repo.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": list})
}

// importStatement accepts a raw CSV body and ingests it. The source label
// comes from the query string; the column mapping uses the default layout.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	processed, err := h.service.IngestStatement(r.Context(), r.Body, r.URL.Query().Get("source"), DefaultColumnMapping())
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			httpx.Problem(w, http.StatusBadRequest, "Malformed Statement", parseErr.Error())
			return
		}
		h.logger.Error("import statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"processed": processed})
}

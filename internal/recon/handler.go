package recon

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/duesdesk/duesdesk/internal/platform/httpx"
	"github.com/duesdesk/duesdesk/internal/shared"
)

// AdminStore exposes the exception browsing and resolution operations used by
// the admin surface.
type AdminStore interface {
	ListExceptions(ctx context.Context, filter ExceptionFilter) ([]ExceptionItem, error)
	ResolveExceptions(ctx context.Context, ids []int64, notes string) (int64, error)
	PromoteReviewDue(ctx context.Context, dueID int64) error
}

// Handler manages reconciliation and exception endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	admin    AdminStore
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, admin AdminStore) *Handler {
	return &Handler{logger: logger, service: service, admin: admin, validate: validator.New()}
}

// MountRoutes registers reconciliation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/run", h.runReconciliation)
	r.Get("/exceptions", h.listExceptions)
	r.Post("/exceptions/resolve", h.resolveExceptions)
	r.Post("/dues/{dueID}/promote", h.promoteReviewDue)
}

func (h *Handler) runReconciliation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Month string `json:"month" validate:"required"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	month, err := shared.ParseMonth(payload.Month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	summary, err := h.service.ReconcileMonth(r.Context(), month)
	if err != nil {
		h.logger.Error("reconcile month", slog.Any("error", err), slog.String("month", payload.Month))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"month":   shared.FormatMonth(month),
		"summary": summary,
	})
}

func (h *Handler) listExceptions(w http.ResponseWriter, r *http.Request) {
	filter := ExceptionFilter{
		Kind:  Kind(r.URL.Query().Get("kind")),
		Limit: 200,
	}
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err := shared.ParseMonth(monthStr)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		filter.Month = month
	}
	if resolvedStr := r.URL.Query().Get("resolved"); resolvedStr != "" {
		resolved := resolvedStr == "true"
		filter.Resolved = &resolved
	}

	list, err := h.admin.ListExceptions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list exceptions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"exceptions": list})
}

func (h *Handler) resolveExceptions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs   []int64 `json:"ids" validate:"required,min=1"`
		Notes string  `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	resolved, err := h.admin.ResolveExceptions(r.Context(), payload.IDs, payload.Notes)
	if err != nil {
		h.logger.Error("resolve exceptions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"resolved": resolved})
}

func (h *Handler) promoteReviewDue(w http.ResponseWriter, r *http.Request) {
	dueID, err := strconv.ParseInt(chi.URLParam(r, "dueID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "due id must be numeric")
		return
	}

	if err := h.admin.PromoteReviewDue(r.Context(), dueID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

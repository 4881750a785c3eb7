package dues

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duesdesk/duesdesk/internal/platform/httpx"
	"github.com/duesdesk/duesdesk/internal/shared"
)

// Handler manages due ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers due routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listDues)
	r.Post("/generate", h.generateDues)
}

func (h *Handler) listDues(w http.ResponseWriter, r *http.Request) {
	month, err := shared.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	list, err := h.service.ListDues(r.Context(), ListFilter{
		Month:  month,
		Status: Status(r.URL.Query().Get("status")),
	})
	if err != nil {
		h.logger.Error("list dues", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"dues": list})
}

func (h *Handler) generateDues(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Month string `json:"month"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	month, err := shared.ParseMonth(payload.Month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	touched, err := h.service.EnsureDuesForMonth(r.Context(), month)
	if err != nil {
		h.logger.Error("ensure dues", slog.Any("error", err), slog.String("month", payload.Month))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"month":   shared.FormatMonth(month),
		"touched": touched,
	})
}

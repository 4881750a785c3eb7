package members

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/duesdesk/duesdesk/internal/platform/httpx"
)

// Handler manages member registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers member routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listMembers)
	r.Post("/", h.createMember)
	r.Get("/{memberID}", h.getMember)
	r.Put("/{memberID}", h.updateMember)
	r.Post("/{memberID}/deactivate", h.deactivateMember)
	r.Post("/{memberID}/activate", h.activateMember)
}

type memberPayload struct {
	MemberID      string `json:"member_id" validate:"required,max=20"`
	Name          string `json:"name" validate:"required,max=120"`
	Phone         string `json:"phone" validate:"max=20"`
	MonthlyAmount int64  `json:"monthly_amount" validate:"required,gt=0"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Search:     r.URL.Query().Get("q"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}

	list, err := h.service.ListMembers(r.Context(), filter)
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"members": list})
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	var payload memberPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	m, err := h.service.CreateMember(r.Context(), MemberInput{
		MemberID:      payload.MemberID,
		Name:          payload.Name,
		Phone:         payload.Phone,
		MonthlyAmount: payload.MonthlyAmount,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateMemberID) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		h.logger.Error("create member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetMember(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	var payload memberPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	payload.MemberID = chi.URLParam(r, "memberID")
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	m, err := h.service.UpdateMember(r.Context(), payload.MemberID, MemberInput{
		Name:          payload.Name,
		Phone:         payload.Phone,
		MonthlyAmount: payload.MonthlyAmount,
	})
	if err != nil {
		h.logger.Error("update member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) deactivateMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateMember(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) activateMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ActivateMember(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

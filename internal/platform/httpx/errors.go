package httpx

import (
	"errors"
	"net/http"

	"github.com/duesdesk/duesdesk/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrMonthFormat):
		Problem(w, http.StatusBadRequest, "Invalid Month", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrMonthLocked):
		Problem(w, http.StatusConflict, "Run In Progress", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

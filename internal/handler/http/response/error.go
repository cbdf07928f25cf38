package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/identity"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var stateErr *apperr.InvalidStateError
	if errors.As(err, &stateErr) {
		InvalidState(w, stateErr.Error(), map[string]string{
			"current":  stateErr.Current,
			"required": strings.Join(stateErr.Required, ","),
		})
		return
	}

	var notFoundErr *apperr.NotFoundError
	if errors.As(err, &notFoundErr) {
		NotFound(w, notFoundErr.Error())
		return
	}

	switch {
	case apperr.IsConflict(err):
		Conflict(w, err.Error())

	// Identity errors
	case errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, identity.ErrUnknownRole),
		errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, err.Error())

	case errors.Is(err, identity.ErrForbidden):
		Forbidden(w, err.Error())

	case errors.Is(err, notification.ErrQueueFull):
		ServiceUnavailable(w, "Notification queue is full")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

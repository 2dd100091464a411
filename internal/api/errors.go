package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskhub-api/internal/api/middleware"
	"github.com/phrazzld/taskhub-api/internal/api/shared"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// Client-facing messages.
const (
	MsgDuplicateIdentity  = "Username or email already exists"
	MsgBadLogin           = "Incorrect username or password"
	MsgTaskNotFound       = "Task not found"
	MsgSessionNotFound    = "Session not found"
	MsgInvalidRequest     = "Invalid request format"
	MsgUnexpected         = "An unexpected error occurred"
	MsgJobsUnavailable    = "Background jobs are not available"
	MsgSessionOfOtherUser = "Session belongs to another user"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrInactiveUser):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrSessionForbidden):
		return http.StatusForbidden

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, auth.ErrDuplicateIdentity),
		store.IsDuplicateError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrJobsUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return middleware.MsgTokenExpired
	case errors.Is(err, auth.ErrInactiveUser):
		return middleware.MsgInactiveUser
	case errors.Is(err, auth.ErrUnauthorized):
		return middleware.MsgInvalidCredentials
	case errors.Is(err, service.ErrSessionForbidden):
		return MsgSessionOfOtherUser
	case errors.Is(err, service.ErrTaskNotFound):
		return MsgTaskNotFound
	case errors.Is(err, service.ErrSessionNotFound):
		return MsgSessionNotFound
	case store.IsNotFoundError(err):
		return "Resource not found"
	case errors.Is(err, auth.ErrDuplicateIdentity),
		store.IsDuplicateError(err):
		return MsgDuplicateIdentity
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, domain.ErrValidation):
		// Domain validation messages are fixed strings without user input.
		return err.Error()
	case errors.Is(err, service.ErrJobsUnavailable):
		return MsgJobsUnavailable
	default:
		return MsgUnexpected
	}
}

// SanitizeValidationError turns a validator error into "Invalid <field>: <reason>".
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

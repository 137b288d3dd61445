package http

import (
	"errors"
	"net/http"

	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/internal/account/store"
	"github.com/openward/accountd/pkg/credential"
	"github.com/openward/accountd/pkg/httpx"
)

// APIError is the wire form of a failed request: a stable machine code
// plus a human-readable message. Handlers never leak raw error text.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

// WriteError writes the error as JSON with its status code.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

var (
	errUserSuspended = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       "user.suspended",
		Message:    "this account has been suspended",
	}

	errSessionNotFound = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       "session.not_found",
		Message:    "no active session found",
	}

	errVerificationRequired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       "verification.required",
		Message:    "verify your current password before making this change",
	}

	errInvalidCredentials = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "session.invalid_credentials",
		Message:    "incorrect account or password",
	}

	errUsernameTaken = &APIError{
		StatusCode: http.StatusConflict,
		Code:       "user.username_already_in_use",
		Message:    "this username is already in use",
	}

	errEmailTaken = &APIError{
		StatusCode: http.StatusConflict,
		Code:       "user.email_already_in_use",
		Message:    "this email is already in use",
	}

	errUserNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       "user.not_found",
		Message:    "user not found",
	}

	errInvalidBody = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       "request.invalid_body",
		Message:    "request body is malformed",
	}

	errServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       "server_error",
		Message:    "internal server error",
	}
)

// mapServiceError translates typed service failures onto API errors. The
// service owns the distinctions; this is the one place statuses are
// assigned.
func mapServiceError(err error) *APIError {
	switch {
	case errors.Is(err, service.ErrUserSuspended):
		return errUserSuspended
	case errors.Is(err, service.ErrSessionNotFound):
		return errSessionNotFound
	case errors.Is(err, service.ErrVerificationRequired):
		return errVerificationRequired
	case errors.Is(err, credential.ErrMismatch):
		return errInvalidCredentials
	case errors.Is(err, service.ErrUsernameTaken):
		return errUsernameTaken
	case errors.Is(err, service.ErrEmailTaken):
		return errEmailTaken
	case errors.Is(err, store.ErrNotFound):
		return errUserNotFound
	default:
		return errServerError
	}
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/pkg/httpx"
	"github.com/openward/accountd/pkg/slogx"
)

type PasswordHandler struct {
	AccountService *service.AccountService
}

type passwordRequest struct {
	Password string `json:"password"`
}

// HandleVerify checks the supplied password and, on success, opens a
// step-up verification window for the caller's session. 204 on success.
func (h *PasswordHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		errServerError.WriteError(w)
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	// The session gate runs inside the service so a suspended user never
	// learns whether their cookie was accepted.
	if err := h.AccountService.VerifyPassword(ctx, userID, sessionID(r), req.Password); err != nil {
		log.Info("password verification rejected", "user_id", userID, "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSet replaces the stored password. Replacing an existing
// credential requires a live verification for the caller's session;
// setting a first password does not. 204 on success.
func (h *PasswordHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		errServerError.WriteError(w)
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if !validPassword(req.Password) {
		apiErr := &APIError{
			StatusCode: http.StatusBadRequest,
			Code:       "password.rejected",
			Message:    "password must be at least 8 printable ASCII characters",
		}
		apiErr.WriteError(w)
		return
	}

	if err := h.AccountService.SetPassword(ctx, userID, sessionID(r), req.Password); err != nil {
		log.Info("password change rejected", "user_id", userID, "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

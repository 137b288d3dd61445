package http

import (
	"encoding/json"
	"net/http"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/pkg/httpx"
	"github.com/openward/accountd/pkg/slogx"
)

type ProfileHandler struct {
	AccountService *service.AccountService
}

// HandleGet returns the authenticated user's profile.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		errServerError.WriteError(w)
		return
	}

	profile, err := h.AccountService.Profile(ctx, userID)
	if err != nil {
		log.Warn("failed to load profile", "user_id", userID, "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profile)
}

type profilePatchRequest struct {
	Username     *string `json:"username"`
	PrimaryEmail *string `json:"primaryEmail"`
	Name         *string `json:"name"`
	Avatar       *string `json:"avatar"`
}

// HandlePatch applies a partial profile update. Absent fields are left
// untouched; present fields are validated before anything hits the
// service.
func (h *ProfileHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		errServerError.WriteError(w)
		return
	}

	var req profilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	if apiErr := validatePatch(req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	patch := domain.ProfilePatch{
		Username:     req.Username,
		PrimaryEmail: req.PrimaryEmail,
		Name:         req.Name,
		Avatar:       req.Avatar,
	}
	if patch.IsEmpty() {
		errInvalidBody.WriteError(w)
		return
	}

	profile, err := h.AccountService.UpdateProfile(ctx, userID, patch)
	if err != nil {
		log.Warn("failed to update profile", "user_id", userID, "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	log.Info("profile updated", "user_id", userID)
	httpx.WriteJSON(w, http.StatusOK, profile)
}

func validatePatch(req profilePatchRequest) *APIError {
	if req.Username != nil && !validUsername(*req.Username) {
		return &APIError{
			StatusCode: http.StatusBadRequest,
			Code:       "user.invalid_username",
			Message:    "username must start with a letter or underscore and contain only word characters",
		}
	}
	if req.PrimaryEmail != nil && *req.PrimaryEmail != "" && !validEmail(*req.PrimaryEmail) {
		return &APIError{
			StatusCode: http.StatusBadRequest,
			Code:       "user.invalid_email",
			Message:    "primaryEmail is not a valid email address",
		}
	}
	if req.Avatar != nil && !validAvatar(*req.Avatar) {
		return &APIError{
			StatusCode: http.StatusBadRequest,
			Code:       "user.invalid_avatar",
			Message:    "avatar must be an absolute URL",
		}
	}
	return nil
}

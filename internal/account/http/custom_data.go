package http

import (
	"encoding/json"
	"net/http"

	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/pkg/httpx"
	"github.com/openward/accountd/pkg/slogx"
)

type CustomDataHandler struct {
	AccountService *service.AccountService
}

// HandleGet returns the user's custom data document.
func (h *CustomDataHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		errServerError.WriteError(w)
		return
	}

	data, err := h.AccountService.CustomData(ctx, userID)
	if err != nil {
		log.Warn("failed to load custom data", "user_id", userID, "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, data)
}

type customDataRequest struct {
	CustomData map[string]any `json:"customData"`
}

// HandlePatch replaces the custom data document wholesale and echoes the
// stored result.
func (h *CustomDataHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		errServerError.WriteError(w)
		return
	}

	var req customDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if req.CustomData == nil {
		errInvalidBody.WriteError(w)
		return
	}

	stored, err := h.AccountService.UpdateCustomData(ctx, userID, req.CustomData)
	if err != nil {
		log.Warn("failed to update custom data", "user_id", userID, "err", err)
		mapServiceError(err).WriteError(w)
		return
	}

	log.Info("custom data updated", "user_id", userID)
	httpx.WriteJSON(w, http.StatusOK, stored)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/security"
	"github.com/username/plusvalia/src/utils"
)

type AuthHandler struct {
	authService *security.AuthService
}

func NewAuthHandler(authService *security.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// HandleToken exchanges the configured API key for a short-lived bearer
// token.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.CheckAPIKey(payload.APIKey); err != nil {
		logger.L.Warn("Token request rejected", "error", err)
		utils.SendJSONError(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken()
	if err != nil {
		logger.L.Error("Failed to generate token", "error", err)
		utils.SendJSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"access_token": token})
}

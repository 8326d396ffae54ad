package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/napatw/lingothai/pkg/http/errors"
)

// HTTPHandlers exposes identity endpoints.
type HTTPHandlers struct {
	manager *Manager
	logger  zerolog.Logger
}

func NewHTTPHandlers(manager *Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{manager: manager, logger: logger}
}

type guestResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// CreateGuest mints a fresh guest identity and its device token.
func (h *HTTPHandlers) CreateGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "POST required")
		return
	}

	userID := uuid.New()
	displayName := fmt.Sprintf("learner-%s", userID.String()[:8])

	token, err := h.manager.Generate(userID, displayName)
	if err != nil {
		h.logger.Error().Err(err).Msg("guest token generation failed")
		httperrors.RespondInternalError(w, "could not create guest")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guestResponse{
		Token:       token,
		UserID:      userID.String(),
		DisplayName: displayName,
	})
}

// GetMe echoes the authenticated identity.
func (h *HTTPHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthRequired, "authentication required")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"user_id":      claims.UserID.String(),
		"display_name": claims.DisplayName,
	})
}

package stats

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/napatw/lingothai/internal/auth"
	httperrors "github.com/napatw/lingothai/pkg/http/errors"
)

// HTTPHandler exposes the stats backend consumed by the app's profile view.
type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// GetMine returns the authenticated user's accumulated totals.
func (h *HTTPHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthRequired, "authentication required")
		return
	}

	totals, err := h.svc.Totals(r.Context(), userID)
	if err != nil {
		httperrors.RespondInternalError(w, "stats unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(totals)
}

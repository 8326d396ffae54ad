package history

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/auth"
	httperrors "github.com/napatw/lingothai/pkg/http/errors"
)

// HTTPHandler exposes the session-history backend.
type HTTPHandler struct {
	repo   *Repository
	logger zerolog.Logger
}

func NewHTTPHandler(repo *Repository, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{repo: repo, logger: logger}
}

// ListMine returns the authenticated user's finished sessions, newest first.
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthRequired, "authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("history query failed")
		httperrors.RespondInternalError(w, "history unavailable")
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

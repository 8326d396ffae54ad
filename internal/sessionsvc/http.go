package sessionsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httperrors "github.com/napatw/lingothai/pkg/http/errors"
)

// Handler is the remote session store the snapshot layer's HTTP client talks
// to: GET/POST/DELETE /v1/sessions/{lessonID}?user_id=... It stores snapshot
// JSON opaquely under its own Redis prefix and never inspects the payload, so
// unknown fields round-trip untouched.
type Handler struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewHandler(redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *Handler {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Handler{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func (h *Handler) key(userID uuid.UUID, lessonID string) string {
	return fmt.Sprintf("remote:session:%s:%s", userID, lessonID)
}

func (h *Handler) parse(r *http.Request) (uuid.UUID, string, error) {
	lessonID := r.PathValue("lessonID")
	if lessonID == "" {
		return uuid.Nil, "", fmt.Errorf("missing lesson id")
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid user_id: %w", err)
	}
	return userID, lessonID, nil
}

// Get returns the stored snapshot, or 404 when none exists.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, err := h.parse(r)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
		return
	}

	data, err := h.redis.Get(r.Context(), h.key(userID, lessonID)).Bytes()
	if err == redis.Nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "no stored session")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("session read failed")
		httperrors.RespondInternalError(w, "session store unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// Put stores the posted snapshot verbatim, last writer wins.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, err := h.parse(r)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "body must be JSON")
		return
	}

	if err := h.redis.Set(r.Context(), h.key(userID, lessonID), []byte(payload), h.ttl).Err(); err != nil {
		h.logger.Error().Err(err).Msg("session write failed")
		httperrors.RespondInternalError(w, "session store unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// Delete removes the stored snapshot. Deleting a missing key is fine.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, err := h.parse(r)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
		return
	}

	if err := h.redis.Del(r.Context(), h.key(userID, lessonID)).Err(); err != nil {
		h.logger.Error().Err(err).Msg("session delete failed")
		httperrors.RespondInternalError(w, "session store unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// Ping verifies the backing store is reachable.
func (h *Handler) Ping(ctx context.Context) error {
	return h.redis.Ping(ctx).Err()
}

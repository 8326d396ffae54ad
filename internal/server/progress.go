package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/auth"
	"github.com/napatw/lingothai/internal/lesson"
	httperrors "github.com/napatw/lingothai/pkg/http/errors"
	"github.com/napatw/lingothai/pkg/http/ws"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the companion web view has a fixed host
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ProgressPublisher bridges engine events onto the WebSocket hub. Delivery
// is best-effort: a disconnected or slow watcher just misses events.
type ProgressPublisher struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

var _ lesson.Publisher = (*ProgressPublisher)(nil)

func NewProgressPublisher(hub *ws.Hub, logger zerolog.Logger) *ProgressPublisher {
	return &ProgressPublisher{hub: hub, logger: logger}
}

func (p *ProgressPublisher) SessionProgress(key lesson.Key, state *lesson.State, lastCorrect bool) {
	err := p.hub.SendToUser(key.UserID, ws.Message{
		Type: ws.TypeSessionProgress,
		Payload: ws.ProgressPayload{
			LessonID:     key.LessonID,
			CurrentIndex: state.CurrentIndex,
			Total:        len(state.Questions),
			Hearts:       state.Hearts,
			Streak:       state.Streak,
			Score:        state.Score,
			LastCorrect:  lastCorrect,
		},
	})
	if err != nil && err != ws.ErrConnectionNotFound {
		p.logger.Debug().Err(err).Str("key", key.String()).Msg("progress push dropped")
	}
}

func (p *ProgressPublisher) SessionFinished(key lesson.Key, result lesson.Result) {
	err := p.hub.SendToUser(key.UserID, ws.Message{
		Type: ws.TypeSessionComplete,
		Payload: ws.CompletePayload{
			LessonID:        key.LessonID,
			AccuracyPercent: result.AccuracyPercent,
			XPEarned:        result.XPEarned,
			DiamondsEarned:  result.DiamondsEarned,
			UnlockedNext:    result.UnlockedNext,
		},
	})
	if err != nil && err != ws.ErrConnectionNotFound {
		p.logger.Debug().Err(err).Str("key", key.String()).Msg("completion push dropped")
	}
}

// HandleProgressWS upgrades an authenticated request into a progress stream.
func HandleProgressWS(hub *ws.Hub, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthRequired, "authentication required")
			return
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("ws upgrade failed")
			return
		}

		wrapped := ws.NewConnection(conn, logger)
		hub.Register(claims.UserID, wrapped)

		go wrapped.WritePump()
		go wrapped.ReadPump(func() {
			hub.Unregister(claims.UserID)
		})
	}
}

package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/auth"
	"github.com/napatw/lingothai/internal/config"
	"github.com/napatw/lingothai/internal/history"
	"github.com/napatw/lingothai/internal/lesson"
	"github.com/napatw/lingothai/internal/sessionsvc"
	"github.com/napatw/lingothai/internal/stats"
	"github.com/napatw/lingothai/pkg/http/ws"
)

// Handlers aggregates every route group the API serves.
type Handlers struct {
	Auth     *auth.HTTPHandlers
	Lessons  *lesson.HTTPHandlers
	Stats    *stats.HTTPHandler
	History  *history.HTTPHandler
	Sessions *sessionsvc.Handler
	Hub      *ws.Hub
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, tokenMgr *auth.Manager, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Identity
	mux.HandleFunc("POST /v1/auth/guest", h.Auth.CreateGuest)
	mux.Handle("GET /v1/users/me", auth.RequireAuth(http.HandlerFunc(h.Auth.GetMe)))

	// Lesson catalog and session operations
	mux.HandleFunc("GET /v1/lessons", h.Lessons.ListLessons)
	requireAuth := func(fn http.HandlerFunc) http.Handler { return auth.RequireAuth(fn) }
	mux.Handle("POST /v1/lessons/{lessonID}/session", requireAuth(h.Lessons.StartSession))
	mux.Handle("GET /v1/lessons/{lessonID}/session", requireAuth(h.Lessons.GetSession))
	mux.Handle("POST /v1/lessons/{lessonID}/session/answer", requireAuth(h.Lessons.SubmitAnswer))
	mux.Handle("POST /v1/lessons/{lessonID}/session/advance", requireAuth(h.Lessons.Advance))
	mux.Handle("GET /v1/lessons/{lessonID}/session/result", requireAuth(h.Lessons.GetResult))

	// Stats and history backends
	mux.Handle("GET /v1/stats/me", requireAuth(h.Stats.GetMine))
	mux.Handle("GET /v1/history/me", requireAuth(h.History.ListMine))

	// Remote session store (what the snapshot layer's HTTP client calls)
	mux.HandleFunc("GET /v1/sessions/{lessonID}", h.Sessions.Get)
	mux.HandleFunc("POST /v1/sessions/{lessonID}", h.Sessions.Put)
	mux.HandleFunc("DELETE /v1/sessions/{lessonID}", h.Sessions.Delete)

	// Live progress stream
	mux.Handle("GET /ws/progress", auth.RequireAuth(HandleProgressWS(h.Hub, logger)))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: auth.Middleware(tokenMgr, logger)(mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return redisClient.Ping(ctx).Err()
}

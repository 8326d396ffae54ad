package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/auth"
	"github.com/napatw/lingothai/internal/config"
	_ "github.com/napatw/lingothai/internal/content/thai" // registers built-in lessons
	"github.com/napatw/lingothai/internal/history"
	"github.com/napatw/lingothai/internal/lesson"
	"github.com/napatw/lingothai/internal/lesson/report"
	"github.com/napatw/lingothai/internal/lesson/store"
	"github.com/napatw/lingothai/internal/logging"
	"github.com/napatw/lingothai/internal/server"
	"github.com/napatw/lingothai/internal/sessionsvc"
	"github.com/napatw/lingothai/internal/stats"
	"github.com/napatw/lingothai/internal/tts"
	"github.com/napatw/lingothai/internal/unlock"
	"github.com/napatw/lingothai/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, Redis, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	tokenMgr := auth.NewManager(auth.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		Issuer: cfg.Name,
	})
	authHandlers := auth.NewHTTPHandlers(tokenMgr, logger)

	// Collaborator backends
	statsSvc := stats.NewService(redisClient, logger)
	historyRepo := history.NewRepository(pool)
	unlockSvc := unlock.NewService(redisClient, cfg.Gameplay.UnlockThreshold, logger)
	sessionStore := sessionsvc.NewHandler(redisClient, cfg.Gameplay.SnapshotTTL, logger)

	// Persistence/resume layer: local Redis plus the remote session service.
	// An empty remote URL leaves the remote leg off (local-only autosave).
	localStore := store.NewRedisStore(redisClient, cfg.Gameplay.SnapshotTTL)
	var remoteStore store.RemoteStore
	if cfg.Remote.SessionBaseURL != "" {
		remoteStore = store.NewRemoteClient(cfg.Remote.SessionBaseURL, &http.Client{Timeout: cfg.Remote.HTTPTimeout})
	} else {
		logger.Warn().Msg("REMOTE_SESSION_BASE_URL not set; snapshots saved locally only")
	}
	snapshots := store.NewManager(localStore, remoteStore, cfg.Gameplay.AutosaveTimeout, logger)

	reporter := report.NewReporter(statsSvc, historyRepo, unlockSvc, snapshots, cfg.Gameplay.UnlockThreshold, logger)

	hub := ws.NewHub(logger)
	publisher := server.NewProgressPublisher(hub, logger)

	rules := lesson.Rules{
		HeartsMax:       cfg.Gameplay.HeartsMax,
		PenaltyHearts:   cfg.Gameplay.PenaltyHearts,
		RewardXPMin:     cfg.Gameplay.RewardXPMin,
		RewardXPMax:     cfg.Gameplay.RewardXPMax,
		RewardDiamonds:  cfg.Gameplay.RewardDiamonds,
		UnlockThreshold: cfg.Gameplay.UnlockThreshold,
	}
	engine := lesson.NewEngine(rules, lesson.NewGenerator(nil), snapshots, reporter, publisher, logger)

	player := tts.NewClient(cfg.TTS.Endpoint, cfg.TTS.HTTPTimeout, logger)
	lessonHandlers := lesson.NewHTTPHandlers(engine, player, unlockSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, tokenMgr, server.Handlers{
		Auth:     authHandlers,
		Lessons:  lessonHandlers,
		Stats:    stats.NewHTTPHandler(statsSvc),
		History:  history.NewHTTPHandler(historyRepo, logger),
		Sessions: sessionStore,
		Hub:      hub,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"lingothai"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	Gameplay Gameplay
	Remote   Remote
	TTS      TTS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds snapshot-store and counter configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
}

// Gameplay groups the lesson session defaults.
type Gameplay struct {
	HeartsMax       int           `env:"HEARTS_MAX" envDefault:"5"`
	PenaltyHearts   int           `env:"PENALTY_HEARTS" envDefault:"1"`
	RewardXPMin     int           `env:"REWARD_XP_MIN" envDefault:"10"`
	RewardXPMax     int           `env:"REWARD_XP_MAX" envDefault:"15"`
	RewardDiamonds  int           `env:"REWARD_DIAMONDS" envDefault:"1"`
	UnlockThreshold int           `env:"UNLOCK_THRESHOLD_PERCENT" envDefault:"70"`
	SnapshotTTL     time.Duration `env:"SNAPSHOT_TTL" envDefault:"72h"`
	AutosaveTimeout time.Duration `env:"AUTOSAVE_TIMEOUT" envDefault:"3s"`
}

// Remote points the snapshot layer at the remote session store.
type Remote struct {
	SessionBaseURL string        `env:"REMOTE_SESSION_BASE_URL"`
	HTTPTimeout    time.Duration `env:"REMOTE_SESSION_HTTP_TIMEOUT" envDefault:"4s"`
}

// TTS configures the best-effort text-to-speech client.
type TTS struct {
	Endpoint    string        `env:"TTS_ENDPOINT"`
	HTTPTimeout time.Duration `env:"TTS_HTTP_TIMEOUT" envDefault:"6s"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

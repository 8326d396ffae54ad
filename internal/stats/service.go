package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/lesson/report"
)

// Totals are a user's accumulated counters.
type Totals struct {
	XP              int `json:"xp"`
	Diamonds        int `json:"diamonds"`
	LessonsFinished int `json:"lessons_finished"`
	CorrectAnswers  int `json:"correct_answers"`
	WrongAnswers    int `json:"wrong_answers"`
	TimeSpentSec    int `json:"time_spent_sec"`
}

// Service accumulates per-user stats in a Redis hash. Deltas are increments,
// so replays inflate counters; callers are expected to submit each session's
// delta once (the engine's finish guard does that).
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
}

var _ report.StatsAggregator = (*Service)(nil)

func NewService(redisClient *redis.Client, logger zerolog.Logger) *Service {
	return &Service{
		redis:  redisClient,
		logger: logger.With().Str("component", "stats").Logger(),
	}
}

func (s *Service) key(userID uuid.UUID) string {
	return fmt.Sprintf("stats:user:%s", userID)
}

// ApplyDelta folds one session's delta into the user's totals.
func (s *Service) ApplyDelta(ctx context.Context, userID uuid.UUID, delta report.Delta) error {
	pipe := s.redis.Pipeline()
	key := s.key(userID)

	pipe.HIncrBy(ctx, key, "xp", int64(delta.XP))
	pipe.HIncrBy(ctx, key, "diamonds", int64(delta.Diamonds))
	pipe.HIncrBy(ctx, key, "correct_answers", int64(delta.CorrectAnswers))
	pipe.HIncrBy(ctx, key, "wrong_answers", int64(delta.WrongAnswers))
	pipe.HIncrBy(ctx, key, "time_spent_sec", int64(delta.TimeSpentSec))
	if delta.FinishedLesson {
		pipe.HIncrBy(ctx, key, "lessons_finished", 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("apply stats delta: %w", err)
	}
	return nil
}

// Totals reads the user's accumulated counters. A user with no activity gets
// zeroes, not an error.
func (s *Service) Totals(ctx context.Context, userID uuid.UUID) (Totals, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return Totals{}, fmt.Errorf("read stats: %w", err)
	}

	get := func(name string) int {
		n, _ := strconv.Atoi(fields[name])
		return n
	}
	return Totals{
		XP:              get("xp"),
		Diamonds:        get("diamonds"),
		LessonsFinished: get("lessons_finished"),
		CorrectAnswers:  get("correct_answers"),
		WrongAnswers:    get("wrong_answers"),
		TimeSpentSec:    get("time_spent_sec"),
	}, nil
}

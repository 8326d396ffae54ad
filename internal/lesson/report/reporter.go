package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/lesson"
)

var sessionsFinished = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lingothai_sessions_finished_total",
	Help: "Lesson sessions that reached the finished state.",
})

// Delta is the per-session increment forwarded to the stats aggregator.
// Idempotency across duplicate submissions is the aggregator's job.
type Delta struct {
	XP             int  `json:"xp"`
	Diamonds       int  `json:"diamonds"`
	FinishedLesson bool `json:"finished_lesson"`
	TimeSpentSec   int  `json:"time_spent_sec"`
	CorrectAnswers int  `json:"correct_answers"`
	WrongAnswers   int  `json:"wrong_answers"`
}

// StatsAggregator accumulates XP/diamonds/correctness counters per user.
type StatsAggregator interface {
	ApplyDelta(ctx context.Context, userID uuid.UUID, delta Delta) error
}

// Record is the session-history row persisted at finish.
type Record struct {
	UserID          uuid.UUID      `json:"user_id"`
	LessonID        string         `json:"lesson_id"`
	Score           int            `json:"score"`
	TotalQuestions  int            `json:"total_questions"`
	CorrectAnswers  int            `json:"correct_answers"`
	WrongAnswers    int            `json:"wrong_answers"`
	AccuracyPercent int            `json:"accuracy_percent"`
	XPEarned        int            `json:"xp_earned"`
	DiamondsEarned  int            `json:"diamonds_earned"`
	TypeHistogram   map[string]int `json:"type_histogram"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
}

// HistoryStore persists finished-session records.
type HistoryStore interface {
	Save(ctx context.Context, rec Record) (string, error)
}

// Attempt is what the unlock checker sees for one finished session.
type Attempt struct {
	Accuracy int `json:"accuracy"`
	Score    int `json:"score"`
	Attempts int `json:"attempts"`
}

// UnlockChecker owns the next-level unlock decision.
type UnlockChecker interface {
	CheckAndUnlock(ctx context.Context, userID uuid.UUID, lessonID string, att Attempt) (bool, error)
}

// SnapshotClearer removes the resume snapshot once a session is done.
type SnapshotClearer interface {
	Clear(ctx context.Context, key lesson.Key)
}

// Reporter converts a finished session into a result record and fans it out
// to the stats aggregator, the history store and the unlock checker. Each
// side effect sits in its own failure boundary: one failing must not block
// the others, and none may keep the learner from seeing their result.
type Reporter struct {
	stats         StatsAggregator
	history       HistoryStore
	unlock        UnlockChecker
	snapshots     SnapshotClearer
	threshold     int
	effectTimeout time.Duration
	logger        zerolog.Logger
}

func NewReporter(stats StatsAggregator, history HistoryStore, unlock UnlockChecker, snapshots SnapshotClearer, threshold int, logger zerolog.Logger) *Reporter {
	if threshold <= 0 {
		threshold = 70
	}
	return &Reporter{
		stats:         stats,
		history:       history,
		unlock:        unlock,
		snapshots:     snapshots,
		threshold:     threshold,
		effectTimeout: 5 * time.Second,
		logger:        logger.With().Str("component", "completion_reporter").Logger(),
	}
}

// Report derives the final result and fires the completion side effects.
// The caller (the state machine's finish guard) guarantees it runs at most
// once per session.
func (r *Reporter) Report(ctx context.Context, key lesson.Key, state *lesson.State) lesson.Result {
	now := time.Now()
	result := lesson.BuildResult(key, state, now)
	sessionsFinished.Inc()

	// The unlock verdict is part of the result the learner sees, so this one
	// call is awaited. If the checker is unreachable we fall back to the
	// threshold rule rather than silently locking the learner out.
	if result.AccuracyPercent >= r.threshold {
		result.UnlockedNext = true
		if r.unlock != nil {
			unlocked, err := r.unlock.CheckAndUnlock(ctx, key.UserID, key.LessonID, Attempt{
				Accuracy: result.AccuracyPercent,
				Score:    result.CorrectAnswers,
				Attempts: 1,
			})
			if err != nil {
				r.logger.Warn().Err(err).Str("key", key.String()).Msg("unlock check failed, using threshold fallback")
			} else {
				result.UnlockedNext = unlocked
			}
		}
	}

	if r.stats != nil {
		delta := Delta{
			XP:             result.XPEarned,
			Diamonds:       result.DiamondsEarned,
			FinishedLesson: true,
			TimeSpentSec:   result.TimeSpentSec,
			CorrectAnswers: result.CorrectAnswers,
			WrongAnswers:   result.WrongAnswers,
		}
		r.detach(key, "stats delta", func(ctx context.Context) error {
			return r.stats.ApplyDelta(ctx, key.UserID, delta)
		})
	}

	if r.history != nil {
		rec := Record{
			UserID:          key.UserID,
			LessonID:        key.LessonID,
			Score:           state.Score,
			TotalQuestions:  result.TotalQuestions,
			CorrectAnswers:  result.CorrectAnswers,
			WrongAnswers:    result.WrongAnswers,
			AccuracyPercent: result.AccuracyPercent,
			XPEarned:        result.XPEarned,
			DiamondsEarned:  result.DiamondsEarned,
			TypeHistogram:   histogram(state.Questions),
			StartedAt:       time.UnixMilli(state.StartedAtMs),
			FinishedAt:      now,
		}
		r.detach(key, "history save", func(ctx context.Context) error {
			_, err := r.history.Save(ctx, rec)
			return err
		})
	}

	if r.snapshots != nil {
		r.detach(key, "snapshot clear", func(ctx context.Context) error {
			r.snapshots.Clear(ctx, key)
			return nil
		})
	}

	return result
}

// detach runs one side effect in its own goroutine and failure boundary.
func (r *Reporter) detach(key lesson.Key, name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().Interface("panic", rec).Str("effect", name).Str("key", key.String()).Msg("completion side effect panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.effectTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Warn().Err(err).Str("effect", name).Str("key", key.String()).Msg("completion side effect failed")
		}
	}()
}

func histogram(questions []lesson.Question) map[string]int {
	hist := make(map[string]int, len(questions))
	for _, q := range questions {
		hist[string(q.Archetype)]++
	}
	return hist
}

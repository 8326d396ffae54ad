package lesson

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Key identifies one learner's session for one lesson. It is passed through
// every persistence call; storage keys are never derived from ambient state.
type Key struct {
	UserID   uuid.UUID `json:"user_id"`
	LessonID string    `json:"lesson_id"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.UserID, k.LessonID)
}

// Rules holds the configurable economy constants (defaults match the app).
type Rules struct {
	HeartsMax       int
	PenaltyHearts   int
	RewardXPMin     int
	RewardXPMax     int
	RewardDiamonds  int
	UnlockThreshold int // accuracy percent required to unlock the next lesson
}

// DefaultRules returns production defaults.
func DefaultRules() Rules {
	return Rules{
		HeartsMax:       5,
		PenaltyHearts:   1,
		RewardXPMin:     10,
		RewardXPMax:     15,
		RewardDiamonds:  1,
		UnlockThreshold: 70,
	}
}

// AnswerEntry is one logged attempt, keyed by question ID in the answer log.
// Retrying before advancing overwrites the entry for that question.
type AnswerEntry struct {
	Answer      any   `json:"answer"`
	IsCorrect   bool  `json:"is_correct"`
	TimestampMs int64 `json:"timestamp_ms"`
}

// State is the mutable per-session state. Questions are fixed for the
// session's lifetime; everything else moves through SubmitAnswer/Advance.
// Once Finished is set no further mutation is permitted.
type State struct {
	Questions      []Question             `json:"questions"`
	CurrentIndex   int                    `json:"current_index"`
	Hearts         int                    `json:"hearts"`
	Streak         int                    `json:"streak"`
	MaxStreak      int                    `json:"max_streak"`
	Score          int                    `json:"score"`
	XPEarned       int                    `json:"xp_earned"`
	DiamondsEarned int                    `json:"diamonds_earned"`
	Answers        map[string]AnswerEntry `json:"answers"`
	StartedAtMs    int64                  `json:"started_at_ms"`
	Finished       bool                   `json:"finished"`
}

// Snapshot is the serializable projection of a session used for resume.
// Questions travel verbatim so the generator is not re-run on restore.
// Consumers must treat an empty question list as "no valid snapshot".
type Snapshot struct {
	Key
	State
}

// Valid reports whether the snapshot can be resumed from.
func (s *Snapshot) Valid() bool {
	return s != nil && len(s.Questions) > 0
}

// Result is derived exactly once when a session finishes.
type Result struct {
	LessonID        string `json:"lesson_id"`
	TotalQuestions  int    `json:"total_questions"`
	CorrectAnswers  int    `json:"correct_answers"`
	WrongAnswers    int    `json:"wrong_answers"`
	AccuracyPercent int    `json:"accuracy_percent"`
	XPEarned        int    `json:"xp_earned"`
	DiamondsEarned  int    `json:"diamonds_earned"`
	HeartsRemaining int    `json:"hearts_remaining"`
	TimeSpentSec    int    `json:"time_spent_sec"`
	UnlockedNext    bool   `json:"unlocked_next"`
}

// BuildResult derives the result record from a finished state. Accuracy is
// scored against the full original question count, not the answered count,
// so a session aborted by hearts exhaustion is penalized for what it skipped.
func BuildResult(key Key, state *State, now time.Time) Result {
	correct := 0
	for _, entry := range state.Answers {
		if entry.IsCorrect {
			correct++
		}
	}
	wrong := len(state.Answers) - correct

	total := len(state.Questions)
	accuracy := 0
	if total > 0 {
		accuracy = int(math.Round(100 * float64(correct) / float64(total)))
	}

	started := time.UnixMilli(state.StartedAtMs)
	elapsed := int(now.Sub(started).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	return Result{
		LessonID:        key.LessonID,
		TotalQuestions:  total,
		CorrectAnswers:  correct,
		WrongAnswers:    wrong,
		AccuracyPercent: accuracy,
		XPEarned:        state.XPEarned,
		DiamondsEarned:  state.DiamondsEarned,
		HeartsRemaining: state.Hearts,
		TimeSpentSec:    elapsed,
	}
}

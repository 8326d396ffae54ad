package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napatw/lingothai/internal/lesson"
)

type statsStub struct {
	deltas chan Delta
	err    error
	panics bool
}

func newStatsStub() *statsStub { return &statsStub{deltas: make(chan Delta, 1)} }

func (s *statsStub) ApplyDelta(_ context.Context, _ uuid.UUID, delta Delta) error {
	if s.panics {
		panic("stats backend blew up")
	}
	s.deltas <- delta
	return s.err
}

type historyStub struct {
	records chan Record
	err     error
}

func newHistoryStub() *historyStub { return &historyStub{records: make(chan Record, 1)} }

func (h *historyStub) Save(_ context.Context, rec Record) (string, error) {
	h.records <- rec
	if h.err != nil {
		return "", h.err
	}
	return uuid.NewString(), nil
}

type unlockStub struct {
	calls    int
	unlocked bool
	err      error
}

func (u *unlockStub) CheckAndUnlock(_ context.Context, _ uuid.UUID, _ string, _ Attempt) (bool, error) {
	u.calls++
	return u.unlocked, u.err
}

type clearerStub struct {
	cleared chan lesson.Key
}

func newClearerStub() *clearerStub { return &clearerStub{cleared: make(chan lesson.Key, 1)} }

func (c *clearerStub) Clear(_ context.Context, key lesson.Key) { c.cleared <- key }

func finishedState(correct, wrong, skipped int) *lesson.State {
	total := correct + wrong + skipped
	questions := make([]lesson.Question, total)
	answers := make(map[string]lesson.AnswerEntry, correct+wrong)
	for i := range questions {
		id := uuid.NewString()
		questions[i] = lesson.Question{ID: id, Archetype: lesson.TrueFalse}
		if i < correct {
			answers[id] = lesson.AnswerEntry{IsCorrect: true}
		} else if i < correct+wrong {
			answers[id] = lesson.AnswerEntry{IsCorrect: false}
		}
	}
	return &lesson.State{
		Questions:      questions,
		CurrentIndex:   total,
		Hearts:         3,
		Score:          correct,
		XPEarned:       correct * 10,
		DiamondsEarned: correct,
		Answers:        answers,
		StartedAtMs:    time.Now().Add(-90 * time.Second).UnixMilli(),
		Finished:       true,
	}
}

func testKey() lesson.Key {
	return lesson.Key{UserID: uuid.New(), LessonID: "th-greetings"}
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for side effect")
		panic("unreachable")
	}
}

func TestReportFansOutAllEffects(t *testing.T) {
	stats, history, unlock, clearer := newStatsStub(), newHistoryStub(), &unlockStub{unlocked: true}, newClearerStub()
	r := NewReporter(stats, history, unlock, clearer, 70, zerolog.Nop())
	key := testKey()

	result := r.Report(context.Background(), key, finishedState(8, 2, 0))

	assert.Equal(t, 10, result.TotalQuestions)
	assert.Equal(t, 8, result.CorrectAnswers)
	assert.Equal(t, 2, result.WrongAnswers)
	assert.Equal(t, 80, result.AccuracyPercent)
	assert.True(t, result.UnlockedNext)
	assert.Equal(t, 1, unlock.calls)

	delta := waitFor(t, stats.deltas)
	assert.Equal(t, 80, delta.XP)
	assert.Equal(t, 8, delta.Diamonds)
	assert.True(t, delta.FinishedLesson)
	assert.Equal(t, 8, delta.CorrectAnswers)
	assert.Equal(t, 2, delta.WrongAnswers)
	assert.GreaterOrEqual(t, delta.TimeSpentSec, 89)

	rec := waitFor(t, history.records)
	assert.Equal(t, key.UserID, rec.UserID)
	assert.Equal(t, key.LessonID, rec.LessonID)
	assert.Equal(t, 80, rec.AccuracyPercent)
	assert.Equal(t, 10, rec.TypeHistogram[string(lesson.TrueFalse)])

	assert.Equal(t, key, waitFor(t, clearer.cleared))
}

func TestUnlockThresholdBoundary(t *testing.T) {
	t.Run("at threshold unlocks", func(t *testing.T) {
		unlock := &unlockStub{unlocked: true}
		r := NewReporter(nil, nil, unlock, nil, 70, zerolog.Nop())

		result := r.Report(context.Background(), testKey(), finishedState(7, 3, 0))
		assert.Equal(t, 70, result.AccuracyPercent)
		assert.True(t, result.UnlockedNext)
		assert.Equal(t, 1, unlock.calls)
	})

	t.Run("below threshold stays locked", func(t *testing.T) {
		unlock := &unlockStub{unlocked: true}
		r := NewReporter(nil, nil, unlock, nil, 70, zerolog.Nop())

		result := r.Report(context.Background(), testKey(), finishedState(6, 4, 0))
		assert.Equal(t, 60, result.AccuracyPercent)
		assert.False(t, result.UnlockedNext)
		assert.Equal(t, 0, unlock.calls, "checker is not consulted below the threshold")
	})
}

func TestUnlockCheckerVerdictWins(t *testing.T) {
	// The checker may refuse even above the threshold (e.g. prerequisite gap).
	unlock := &unlockStub{unlocked: false}
	r := NewReporter(nil, nil, unlock, nil, 70, zerolog.Nop())

	result := r.Report(context.Background(), testKey(), finishedState(10, 0, 0))
	assert.False(t, result.UnlockedNext)
}

func TestUnlockCheckerErrorFallsBackToThreshold(t *testing.T) {
	unlock := &unlockStub{err: errors.New("redis down")}
	r := NewReporter(nil, nil, unlock, nil, 70, zerolog.Nop())

	result := r.Report(context.Background(), testKey(), finishedState(9, 1, 0))
	assert.True(t, result.UnlockedNext, "unreachable checker must not lock the learner out")
}

// One side effect failing or panicking must not stop the others, and Report
// itself must still return a result.
func TestSideEffectsAreIsolated(t *testing.T) {
	stats := newStatsStub()
	stats.panics = true
	history := newHistoryStub()
	history.err = errors.New("pg down")
	clearer := newClearerStub()
	r := NewReporter(stats, history, nil, clearer, 70, zerolog.Nop())

	key := testKey()
	var result lesson.Result
	require.NotPanics(t, func() {
		result = r.Report(context.Background(), key, finishedState(5, 0, 0))
	})
	assert.Equal(t, 100, result.AccuracyPercent)

	// History and clear still fire despite the stats panic.
	waitFor(t, history.records)
	assert.Equal(t, key, waitFor(t, clearer.cleared))
}

func TestReportWithNilCollaborators(t *testing.T) {
	r := NewReporter(nil, nil, nil, nil, 70, zerolog.Nop())

	var result lesson.Result
	require.NotPanics(t, func() {
		result = r.Report(context.Background(), testKey(), finishedState(3, 1, 1))
	})
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 60, result.AccuracyPercent, "skipped questions count against accuracy")
	assert.False(t, result.UnlockedNext)
}

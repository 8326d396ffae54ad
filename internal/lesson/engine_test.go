package lesson

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napatw/lingothai/internal/content"
)

type stubSnapshots struct {
	restored  *Snapshot
	saved     []*Snapshot
	syncSaved []*Snapshot
}

func (s *stubSnapshots) Autosave(snap *Snapshot)                       { s.saved = append(s.saved, snap) }
func (s *stubSnapshots) AutosaveSync(_ context.Context, snap *Snapshot) { s.syncSaved = append(s.syncSaved, snap) }
func (s *stubSnapshots) Restore(_ context.Context, _ Key) *Snapshot    { return s.restored }

type stubReporter struct {
	calls  int
	result Result
}

func (r *stubReporter) Report(_ context.Context, key Key, state *State) Result {
	r.calls++
	if r.result.LessonID != "" {
		return r.result
	}
	return BuildResult(key, state, time.Now())
}

type stubPublisher struct {
	progress int
	finished int
}

func (p *stubPublisher) SessionProgress(Key, *State, bool) { p.progress++ }
func (p *stubPublisher) SessionFinished(Key, Result)       { p.finished++ }

func testRules() Rules {
	return Rules{
		HeartsMax:       3,
		PenaltyHearts:   1,
		RewardXPMin:     10,
		RewardXPMax:     10, // fixed reward keeps assertions deterministic
		RewardDiamonds:  1,
		UnlockThreshold: 70,
	}
}

func testEngine(snaps *stubSnapshots, rep *stubReporter, pub *stubPublisher) *Engine {
	var p Publisher
	if pub != nil {
		p = pub
	}
	return NewEngine(testRules(), newTestGenerator(1), snaps, rep, p, zerolog.Nop())
}

func testKey() Key {
	return Key{UserID: uuid.New(), LessonID: "th-greetings"}
}

// trueFalseQuestions builds n deterministic questions all answered correctly
// by AnswerRight.
func trueFalseQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:          uuid.NewString(),
			Archetype:   TrueFalse,
			Statement:   "stmt",
			CorrectText: AnswerRight,
			Choices:     []string{AnswerRight, AnswerWrong},
		}
	}
	return qs
}

// restoredSession wires an engine whose Restore yields a crafted state, so
// tests control the exact question sequence.
func restoredSession(t *testing.T, questions []Question, snaps *stubSnapshots, rep *stubReporter, pub *stubPublisher) *Session {
	t.Helper()
	key := testKey()
	snaps.restored = &Snapshot{
		Key: key,
		State: State{
			Questions:   questions,
			Hearts:      testRules().HeartsMax,
			Answers:     make(map[string]AnswerEntry),
			StartedAtMs: time.Now().UnixMilli(),
		},
	}
	eng := testEngine(snaps, rep, pub)

	s, resumed, err := eng.Start(context.Background(), key, nil, nil)
	require.NoError(t, err)
	require.True(t, resumed)
	return s
}

func TestStartEmptyPoolReturnsNoContent(t *testing.T) {
	eng := testEngine(&stubSnapshots{}, &stubReporter{}, nil)

	_, _, err := eng.Start(context.Background(), testKey(), nil, DefaultMix)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestStartFreshSessionSavesInitialSnapshot(t *testing.T) {
	snaps := &stubSnapshots{}
	eng := testEngine(snaps, &stubReporter{}, nil)
	pool := []content.VocabItem{{ID: "v1", Thai: "สวัสดี", Translation: "hello"}}

	s, resumed, err := eng.Start(context.Background(), testKey(), pool, Mix{TrueFalse: 4})
	require.NoError(t, err)
	assert.False(t, resumed)

	state := s.View()
	assert.Equal(t, testRules().HeartsMax, state.Hearts)
	assert.Len(t, state.Questions, 4)
	assert.Equal(t, 0, state.CurrentIndex)

	require.Len(t, snaps.syncSaved, 1)
	assert.True(t, snaps.syncSaved[0].Valid())
}

func TestStartReturnsInMemorySession(t *testing.T) {
	snaps := &stubSnapshots{}
	eng := testEngine(snaps, &stubReporter{}, nil)
	key := testKey()
	pool := []content.VocabItem{{ID: "v1", Thai: "สวัสดี", Translation: "hello"}}

	first, _, err := eng.Start(context.Background(), key, pool, Mix{TrueFalse: 2})
	require.NoError(t, err)

	second, resumed, err := eng.Start(context.Background(), key, pool, Mix{TrueFalse: 2})
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Same(t, first, second)
}

func TestStartResumesFromSnapshot(t *testing.T) {
	snaps := &stubSnapshots{}
	s := restoredSession(t, trueFalseQuestions(5), snaps, &stubReporter{}, nil)

	state := s.View()
	assert.Len(t, state.Questions, 5)
	assert.Equal(t, testRules().HeartsMax, state.Hearts)
	// A resumed session does not re-save on start.
	assert.Empty(t, snaps.syncSaved)
}

func TestSubmitCorrectAnswerRewards(t *testing.T) {
	snaps := &stubSnapshots{}
	pub := &stubPublisher{}
	s := restoredSession(t, trueFalseQuestions(3), snaps, &stubReporter{}, pub)

	out, err := s.SubmitAnswer(context.Background(), AnswerRight)
	require.NoError(t, err)

	assert.True(t, out.Correct)
	assert.Equal(t, 3, out.Hearts)
	assert.Equal(t, 1, out.Streak)
	assert.Equal(t, 10, out.XPEarned)
	assert.False(t, out.Finished)

	state := s.View()
	assert.Equal(t, 1, state.Score)
	assert.Equal(t, 10, state.XPEarned)
	assert.Equal(t, 1, state.DiamondsEarned)
	assert.Len(t, snaps.saved, 1)
	assert.Equal(t, 1, pub.progress)
}

func TestSubmitWrongAnswerCostsHeartAndResetsStreak(t *testing.T) {
	s := restoredSession(t, trueFalseQuestions(5), &stubSnapshots{}, &stubReporter{}, nil)

	_, err := s.SubmitAnswer(context.Background(), AnswerRight)
	require.NoError(t, err)
	_, err = s.Advance(context.Background())
	require.NoError(t, err)

	out, err := s.SubmitAnswer(context.Background(), AnswerWrong)
	require.NoError(t, err)

	assert.False(t, out.Correct)
	assert.Equal(t, 2, out.Hearts)
	assert.Equal(t, 0, out.Streak, "streak resets on a wrong answer")

	state := s.View()
	assert.Equal(t, 1, state.MaxStreak, "max streak survives the reset")
	assert.Equal(t, 1, state.Score)
}

func TestRetryBeforeAdvanceOverwritesAnswer(t *testing.T) {
	s := restoredSession(t, trueFalseQuestions(3), &stubSnapshots{}, &stubReporter{}, nil)
	qID := s.View().Questions[0].ID

	_, err := s.SubmitAnswer(context.Background(), AnswerWrong)
	require.NoError(t, err)
	_, err = s.SubmitAnswer(context.Background(), AnswerRight)
	require.NoError(t, err)

	state := s.View()
	require.Len(t, state.Answers, 1)
	assert.True(t, state.Answers[qID].IsCorrect)
}

func TestHeartsExhaustionFinishesImmediately(t *testing.T) {
	rep := &stubReporter{}
	pub := &stubPublisher{}
	s := restoredSession(t, trueFalseQuestions(10), &stubSnapshots{}, rep, pub)

	var out SubmitOutcome
	var err error
	for i := 0; i < 3; i++ {
		out, err = s.SubmitAnswer(context.Background(), AnswerWrong)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, out.Hearts)
	assert.True(t, out.Finished, "losing the last heart finishes without an advance")
	require.NotNil(t, out.Result)
	assert.Equal(t, 1, rep.calls)
	assert.Equal(t, 1, pub.finished)

	state := s.View()
	assert.True(t, state.Finished)
	assert.Len(t, state.Answers, 3, "the heart-exhausting answer is still logged")

	_, err = s.SubmitAnswer(context.Background(), AnswerRight)
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestCompletionByAnsweringAllQuestions(t *testing.T) {
	rep := &stubReporter{}
	s := restoredSession(t, trueFalseQuestions(3), &stubSnapshots{}, rep, nil)

	for i := 0; i < 3; i++ {
		_, err := s.SubmitAnswer(context.Background(), AnswerRight)
		require.NoError(t, err)
		out, err := s.Advance(context.Background())
		require.NoError(t, err)
		if i < 2 {
			assert.False(t, out.Finished)
			assert.Equal(t, i+1, out.CurrentIndex)
		} else {
			assert.True(t, out.Finished)
			require.NotNil(t, out.Result)
			assert.Equal(t, 100, out.Result.AccuracyPercent)
			assert.Equal(t, 3, out.Result.CorrectAnswers)
		}
	}
	assert.Equal(t, 1, rep.calls)
}

func TestFinishIsIdempotent(t *testing.T) {
	rep := &stubReporter{}
	s := restoredSession(t, trueFalseQuestions(2), &stubSnapshots{}, rep, nil)

	for i := 0; i < 2; i++ {
		_, err := s.SubmitAnswer(context.Background(), AnswerRight)
		require.NoError(t, err)
		_, err = s.Advance(context.Background())
		require.NoError(t, err)
	}

	first, ok := s.Result()
	require.True(t, ok)

	// Advancing a finished session is a silent no-op returning the result.
	out, err := s.Advance(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, first, out.Result)

	out, err = s.Advance(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Finished)

	assert.Equal(t, 1, rep.calls, "completion side effects fire exactly once")
}

// Accuracy counts against all generated questions, so questions never reached
// after hearts ran out still drag the percentage down.
func TestAccuracyPenalizesSkippedQuestions(t *testing.T) {
	s := restoredSession(t, trueFalseQuestions(10), &stubSnapshots{}, &stubReporter{}, nil)

	// 2 correct, then 3 wrong exhausts hearts with 5 questions untouched.
	for i := 0; i < 2; i++ {
		_, err := s.SubmitAnswer(context.Background(), AnswerRight)
		require.NoError(t, err)
		_, err = s.Advance(context.Background())
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := s.SubmitAnswer(context.Background(), AnswerWrong)
		require.NoError(t, err)
		if i < 2 {
			_, err = s.Advance(context.Background())
			require.NoError(t, err)
		}
	}

	res, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, 10, res.TotalQuestions)
	assert.Equal(t, 2, res.CorrectAnswers)
	assert.Equal(t, 3, res.WrongAnswers)
	assert.Equal(t, 20, res.AccuracyPercent)
}

func TestSnapshotDetachedFromLiveState(t *testing.T) {
	snaps := &stubSnapshots{}
	s := restoredSession(t, trueFalseQuestions(4), snaps, &stubReporter{}, nil)

	_, err := s.SubmitAnswer(context.Background(), AnswerRight)
	require.NoError(t, err)
	require.Len(t, snaps.saved, 1)
	snap := snaps.saved[0]

	_, err = s.Advance(context.Background())
	require.NoError(t, err)
	_, err = s.SubmitAnswer(context.Background(), AnswerWrong)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.CurrentIndex, "snapshot must not track later mutations")
	assert.Len(t, snap.Answers, 1)
}

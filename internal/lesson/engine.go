package lesson

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/content"
)

var (
	// ErrNoContent means the lesson pool produced no questions. The caller
	// shows a "nothing to practice" state; it is not a server fault.
	ErrNoContent = errors.New("no lesson content available")

	// ErrSessionFinished is returned for answer submissions after finish.
	ErrSessionFinished = errors.New("session already finished")
)

// Snapshots is what the engine needs from the persistence layer.
type Snapshots interface {
	Autosave(snap *Snapshot)
	AutosaveSync(ctx context.Context, snap *Snapshot)
	Restore(ctx context.Context, key Key) *Snapshot
}

// Reporter converts a finished state into a result and fires completion
// side effects. The engine's finish guard ensures at most one call.
type Reporter interface {
	Report(ctx context.Context, key Key, state *State) Result
}

// Publisher receives progress events for live observers. Optional.
type Publisher interface {
	SessionProgress(key Key, state *State, lastCorrect bool)
	SessionFinished(key Key, result Result)
}

// Engine owns the active sessions on this instance, one per (user, lesson).
type Engine struct {
	rules     Rules
	gen       *Generator
	snapshots Snapshots
	reporter  Reporter
	publisher Publisher
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewEngine(rules Rules, gen *Generator, snapshots Snapshots, reporter Reporter, publisher Publisher, logger zerolog.Logger) *Engine {
	if rules.HeartsMax <= 0 {
		rules = DefaultRules()
	}
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Engine{
		rules:     rules,
		gen:       gen,
		snapshots: snapshots,
		reporter:  reporter,
		publisher: publisher,
		logger:    logger.With().Str("component", "lesson_engine").Logger(),
		sessions:  make(map[string]*Session),
	}
}

// Start returns the session for key, resuming a persisted snapshot when one
// exists and generating a fresh question sequence otherwise. The bool reports
// whether an earlier session was resumed.
func (e *Engine) Start(ctx context.Context, key Key, pool []content.VocabItem, mix Mix) (*Session, bool, error) {
	e.mu.Lock()
	if s, ok := e.sessions[key.String()]; ok && !s.state.Finished {
		e.mu.Unlock()
		return s, true, nil
	}
	e.mu.Unlock()

	if snap := e.snapshots.Restore(ctx, key); snap != nil && !snap.Finished {
		s := e.register(key, &snap.State)
		e.logger.Info().Str("key", key.String()).Int("index", snap.CurrentIndex).Msg("session resumed from snapshot")
		return s, true, nil
	}

	questions := e.gen.Generate(pool, mix)
	if len(questions) == 0 {
		return nil, false, ErrNoContent
	}

	state := &State{
		Questions:   questions,
		Hearts:      e.rules.HeartsMax,
		Answers:     make(map[string]AnswerEntry),
		StartedAtMs: time.Now().UnixMilli(),
	}

	s := e.register(key, state)
	e.snapshots.AutosaveSync(ctx, s.snapshotLocked())
	e.logger.Info().Str("key", key.String()).Int("questions", len(questions)).Msg("session started")
	return s, false, nil
}

// Get returns the live session for key, if any.
func (e *Engine) Get(key Key) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[key.String()]
	return s, ok
}

func (e *Engine) register(key Key, state *State) *Session {
	s := &Session{key: key, state: state, engine: e}
	e.mu.Lock()
	e.sessions[key.String()] = s
	e.mu.Unlock()
	return s
}

// Session drives one learner through one lesson. All transitions are
// sequential per session; the mutex only shields against overlapping HTTP
// calls for the same key.
type Session struct {
	mu     sync.Mutex
	key    Key
	state  *State
	engine *Engine
	result *Result
}

// SubmitOutcome reports what one answer did to the session.
type SubmitOutcome struct {
	Correct  bool    `json:"correct"`
	Hearts   int     `json:"hearts"`
	Streak   int     `json:"streak"`
	XPEarned int     `json:"xp_earned"`
	Finished bool    `json:"finished"`
	Result   *Result `json:"result,omitempty"`
}

// AdvanceOutcome reports the state after moving to the next question.
type AdvanceOutcome struct {
	CurrentIndex int     `json:"current_index"`
	Finished     bool    `json:"finished"`
	Result       *Result `json:"result,omitempty"`
}

// Key returns the session's lookup key.
func (s *Session) Key() Key { return s.key }

// Current returns the active question, or false when the session is done.
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Finished || s.state.CurrentIndex >= len(s.state.Questions) {
		return Question{}, false
	}
	return s.state.Questions[s.state.CurrentIndex], true
}

// View returns a copy of the state for read-only callers.
func (s *Session) View() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state
}

// Result returns the final result once the session has finished.
func (s *Session) Result() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	res := *s.result
	return &res, true
}

// SubmitAnswer evaluates the current question and applies the economy rules.
// Correct: score/streak/xp/diamonds go up. Wrong: a heart is lost and the
// streak resets. Hearts hitting zero finishes the session immediately, after
// the triggering answer is logged, and takes priority over advancing.
func (s *Session) SubmitAnswer(ctx context.Context, answer any) (SubmitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Finished || s.state.CurrentIndex >= len(s.state.Questions) {
		return SubmitOutcome{}, ErrSessionFinished
	}

	q := s.state.Questions[s.state.CurrentIndex]
	correct := Evaluate(q, answer)

	// Retries before advancing overwrite the prior attempt for this question.
	s.state.Answers[q.ID] = AnswerEntry{
		Answer:      answer,
		IsCorrect:   correct,
		TimestampMs: time.Now().UnixMilli(),
	}

	rules := s.engine.rules
	xp := 0
	if correct {
		s.state.Score++
		s.state.Streak++
		if s.state.Streak > s.state.MaxStreak {
			s.state.MaxStreak = s.state.Streak
		}
		xp = rules.RewardXPMin
		if rules.RewardXPMax > rules.RewardXPMin {
			xp += rand.Intn(rules.RewardXPMax - rules.RewardXPMin + 1)
		}
		s.state.XPEarned += xp
		s.state.DiamondsEarned += rules.RewardDiamonds
	} else {
		s.state.Hearts -= rules.PenaltyHearts
		if s.state.Hearts < 0 {
			s.state.Hearts = 0
		}
		s.state.Streak = 0
	}

	outcome := SubmitOutcome{
		Correct:  correct,
		Hearts:   s.state.Hearts,
		Streak:   s.state.Streak,
		XPEarned: xp,
	}

	if s.state.Hearts == 0 {
		s.finishLocked(ctx)
		outcome.Finished = true
		outcome.Result = s.result
		return outcome, nil
	}

	s.engine.snapshots.Autosave(s.snapshotLocked())
	if s.engine.publisher != nil {
		s.engine.publisher.SessionProgress(s.key, s.state, correct)
	}
	return outcome, nil
}

// Advance exposes the next question. Exhausting the question list finishes
// the session. Advancing a finished session is a silent no-op that returns
// the already-computed result.
func (s *Session) Advance(ctx context.Context) (AdvanceOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Finished {
		return AdvanceOutcome{CurrentIndex: s.state.CurrentIndex, Finished: true, Result: s.result}, nil
	}

	s.state.CurrentIndex++

	if s.state.Hearts == 0 || s.state.CurrentIndex >= len(s.state.Questions) {
		s.finishLocked(ctx)
		return AdvanceOutcome{CurrentIndex: s.state.CurrentIndex, Finished: true, Result: s.result}, nil
	}

	s.engine.snapshots.Autosave(s.snapshotLocked())
	if s.engine.publisher != nil {
		s.engine.publisher.SessionProgress(s.key, s.state, false)
	}
	return AdvanceOutcome{CurrentIndex: s.state.CurrentIndex}, nil
}

// finishLocked is the single terminal transition. The finished flag makes it
// idempotent: side effects fire once no matter how many paths race into it.
func (s *Session) finishLocked(ctx context.Context) {
	if s.state.Finished {
		return
	}
	s.state.Finished = true

	result := s.engine.reporter.Report(ctx, s.key, s.state)
	s.result = &result

	if s.engine.publisher != nil {
		s.engine.publisher.SessionFinished(s.key, result)
	}
	s.engine.logger.Info().
		Str("key", s.key.String()).
		Int("accuracy", result.AccuracyPercent).
		Int("hearts", result.HeartsRemaining).
		Bool("unlocked_next", result.UnlockedNext).
		Msg("session finished")
}

// snapshotLocked copies the state into a serializable snapshot. The caller
// holds the session mutex; the copy detaches the snapshot from later
// mutations so fire-and-forget writers never observe a torn state.
func (s *Session) snapshotLocked() *Snapshot {
	stateCopy := *s.state
	stateCopy.Questions = append([]Question(nil), s.state.Questions...)
	stateCopy.Answers = make(map[string]AnswerEntry, len(s.state.Answers))
	for id, entry := range s.state.Answers {
		stateCopy.Answers[id] = entry
	}
	return &Snapshot{Key: s.key, State: stateCopy}
}

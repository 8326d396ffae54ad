package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/auth"
	"github.com/napatw/lingothai/internal/content"
	httperrors "github.com/napatw/lingothai/pkg/http/errors"
)

// AudioPlayer speaks a question's audio text. Best-effort by contract.
type AudioPlayer interface {
	Play(ctx context.Context, text string)
}

// UnlockReader lists the lessons a user has unlocked beyond the first.
type UnlockReader interface {
	Unlocked(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// HTTPHandlers drives lesson sessions over HTTP, standing in for the
// per-lesson game screens.
type HTTPHandlers struct {
	engine  *Engine
	player  AudioPlayer
	unlocks UnlockReader
	logger  zerolog.Logger
}

func NewHTTPHandlers(engine *Engine, player AudioPlayer, unlocks UnlockReader, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{engine: engine, player: player, unlocks: unlocks, logger: logger}
}

// questionView is the client-safe projection of a question: everything that
// encodes the correct answer is stripped.
type questionView struct {
	ID            string      `json:"id"`
	Archetype     Archetype   `json:"archetype"`
	AudioText     string      `json:"audio_text,omitempty"`
	ImageKey      string      `json:"image_key,omitempty"`
	Template      string      `json:"template,omitempty"`
	Statement     string      `json:"statement,omitempty"`
	Choices       []string    `json:"choices,omitempty"`
	WordBank      []BankToken `json:"word_bank,omitempty"`
	LeftItems     []BankToken `json:"left_items,omitempty"`
	RightItems    []BankToken `json:"right_items,omitempty"`
	SourceText    string      `json:"source_text,omitempty"`
	TargetPattern string      `json:"target_pattern,omitempty"`
}

func viewOf(q Question) questionView {
	v := questionView{
		ID:            q.ID,
		Archetype:     q.Archetype,
		AudioText:     q.AudioText,
		ImageKey:      q.ImageKey,
		Template:      q.Template,
		Statement:     q.Statement,
		Choices:       q.Choices,
		SourceText:    q.SourceText,
		TargetPattern: q.TargetPattern,
	}
	for _, t := range q.WordBank {
		v.WordBank = append(v.WordBank, t)
	}
	for _, item := range q.LeftItems {
		v.LeftItems = append(v.LeftItems, BankToken{ID: item.ID, Text: item.Text})
	}
	for _, item := range q.RightItems {
		v.RightItems = append(v.RightItems, BankToken{ID: item.ID, Text: item.Text})
	}
	return v
}

type sessionView struct {
	LessonID     string        `json:"lesson_id"`
	Resumed      bool          `json:"resumed"`
	CurrentIndex int           `json:"current_index"`
	Total        int           `json:"total"`
	Hearts       int           `json:"hearts"`
	Streak       int           `json:"streak"`
	Score        int           `json:"score"`
	Finished     bool          `json:"finished"`
	Question     *questionView `json:"question,omitempty"`
}

func (h *HTTPHandlers) sessionView(s *Session, resumed bool) sessionView {
	state := s.View()
	view := sessionView{
		LessonID:     s.Key().LessonID,
		Resumed:      resumed,
		CurrentIndex: state.CurrentIndex,
		Total:        len(state.Questions),
		Hearts:       state.Hearts,
		Streak:       state.Streak,
		Score:        state.Score,
		Finished:     state.Finished,
	}
	if q, ok := s.Current(); ok {
		qv := viewOf(q)
		view.Question = &qv
	}
	return view
}

func (h *HTTPHandlers) sessionKey(r *http.Request) (Key, *content.Lesson, bool) {
	lessonID := r.PathValue("lessonID")
	l := content.Get(lessonID)
	if l == nil {
		return Key{}, nil, false
	}
	return Key{UserID: auth.UserIDFromContext(r.Context()), LessonID: lessonID}, l, true
}

// ListLessons returns the catalog with per-user lock state. The first lesson
// is always open.
func (h *HTTPHandlers) ListLessons(w http.ResponseWriter, r *http.Request) {
	unlocked := map[string]bool{}
	if h.unlocks != nil {
		if ids, err := h.unlocks.Unlocked(r.Context(), auth.UserIDFromContext(r.Context())); err == nil {
			for _, id := range ids {
				unlocked[id] = true
			}
		} else {
			h.logger.Warn().Err(err).Msg("unlock lookup failed, listing locked")
		}
	}

	type lessonView struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Order       int    `json:"order"`
		Unlocked    bool   `json:"unlocked"`
	}

	var out []lessonView
	for i, l := range content.All() {
		out = append(out, lessonView{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Order:       l.Order,
			Unlocked:    i == 0 || unlocked[l.ID],
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// StartSession starts a fresh session or resumes a persisted one.
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	key, l, ok := h.sessionKey(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeLessonNotFound, "unknown lesson")
		return
	}

	mix := make(Mix, len(l.Mix))
	for arch, count := range l.Mix {
		mix[Archetype(arch)] = count
	}

	session, resumed, err := h.engine.Start(r.Context(), key, l.Pool, mix)
	if errors.Is(err, ErrNoContent) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNoContent, "nothing to practice")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("key", key.String()).Msg("session start failed")
		httperrors.RespondInternalError(w, "could not start session")
		return
	}

	h.playCurrent(session)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.sessionView(session, resumed))
}

// GetSession returns the live session state.
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.sessionKey(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeLessonNotFound, "unknown lesson")
		return
	}

	session, ok := h.engine.Get(key)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "no active session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.sessionView(session, false))
}

// SubmitAnswer evaluates the posted answer against the current question.
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.sessionKey(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeLessonNotFound, "unknown lesson")
		return
	}

	session, ok := h.engine.Get(key)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "no active session")
		return
	}

	var body struct {
		Answer any `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidAnswer, "body must be JSON with an answer field")
		return
	}

	outcome, err := session.SubmitAnswer(r.Context(), body.Answer)
	if errors.Is(err, ErrSessionFinished) {
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionFinished, "session already finished")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("key", key.String()).Msg("submit failed")
		httperrors.RespondInternalError(w, "could not submit answer")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(outcome)
}

// Advance moves to the next question, finishing the session at the end.
func (h *HTTPHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.sessionKey(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeLessonNotFound, "unknown lesson")
		return
	}

	session, ok := h.engine.Get(key)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "no active session")
		return
	}

	outcome, err := session.Advance(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("key", key.String()).Msg("advance failed")
		httperrors.RespondInternalError(w, "could not advance")
		return
	}

	if !outcome.Finished {
		h.playCurrent(session)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		AdvanceOutcome
		Question *questionView `json:"question,omitempty"`
	}{
		AdvanceOutcome: outcome,
		Question:       h.currentView(session),
	})
}

// GetResult returns the final result for a finished session.
func (h *HTTPHandlers) GetResult(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.sessionKey(r)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeLessonNotFound, "unknown lesson")
		return
	}

	session, ok := h.engine.Get(key)
	if !ok {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "no active session")
		return
	}

	result, ok := session.Result()
	if !ok {
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidRequest, "session not finished yet")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *HTTPHandlers) currentView(s *Session) *questionView {
	if q, ok := s.Current(); ok {
		qv := viewOf(q)
		return &qv
	}
	return nil
}

// playCurrent pre-warms audio for listening questions. Detached: playback
// failures never reach the learner.
func (h *HTTPHandlers) playCurrent(s *Session) {
	if h.player == nil {
		return
	}
	if q, ok := s.Current(); ok && q.AudioText != "" {
		go h.player.Play(context.Background(), q.AudioText)
	}
}

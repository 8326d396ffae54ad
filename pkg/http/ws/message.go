package ws

import "errors"

// Message types pushed to progress watchers.
const (
	TypeSessionProgress = "session_progress"
	TypeSessionComplete = "session_complete"
)

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionClosed   = errors.New("connection closed")
	ErrSendQueueFull      = errors.New("send queue full")
)

// Message is the envelope for every WebSocket push.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ProgressPayload mirrors the session state a companion view cares about.
type ProgressPayload struct {
	LessonID     string `json:"lesson_id"`
	CurrentIndex int    `json:"current_index"`
	Total        int    `json:"total"`
	Hearts       int    `json:"hearts"`
	Streak       int    `json:"streak"`
	Score        int    `json:"score"`
	LastCorrect  bool   `json:"last_correct"`
}

// CompletePayload is pushed once when a session finishes.
type CompletePayload struct {
	LessonID        string `json:"lesson_id"`
	AccuracyPercent int    `json:"accuracy_percent"`
	XPEarned        int    `json:"xp_earned"`
	DiamondsEarned  int    `json:"diamonds_earned"`
	UnlockedNext    bool   `json:"unlocked_next"`
}

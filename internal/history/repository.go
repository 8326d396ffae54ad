package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/napatw/lingothai/internal/lesson/report"
)

// Entry is one persisted session-history row.
type Entry struct {
	ID              uuid.UUID      `json:"id"`
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

// Repository persists finished-session records in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

var _ report.HistoryStore = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a session-history record and returns its generated ID.
func (r *Repository) Save(ctx context.Context, rec report.Record) (string, error) {
	id := uuid.New()

	histogram, err := json.Marshal(rec.TypeHistogram)
	if err != nil {
		return "", fmt.Errorf("marshal histogram: %w", err)
	}

	const q = `
		INSERT INTO session_history (
			id, user_id, lesson_id, score, total_questions, correct_answers,
			wrong_answers, accuracy_percent, xp_earned, diamonds_earned,
			type_histogram, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, q,
		id, rec.UserID, rec.LessonID, rec.Score, rec.TotalQuestions,
		rec.CorrectAnswers, rec.WrongAnswers, rec.AccuracyPercent,
		rec.XPEarned, rec.DiamondsEarned, histogram, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert session history: %w", err)
	}
	return id.String(), nil
}

// ListByUser returns a user's finished sessions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
		SELECT id, user_id, lesson_id, score, total_questions, correct_answers,
		       wrong_answers, accuracy_percent, xp_earned, diamonds_earned,
		       type_histogram, started_at, finished_at
		FROM session_history
		WHERE user_id = $1
		ORDER BY finished_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query session history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var histogram []byte
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.LessonID, &e.Score, &e.TotalQuestions,
			&e.CorrectAnswers, &e.WrongAnswers, &e.AccuracyPercent,
			&e.XPEarned, &e.DiamondsEarned, &histogram, &e.StartedAt, &e.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session history: %w", err)
		}
		if err := json.Unmarshal(histogram, &e.TypeHistogram); err != nil {
			return nil, fmt.Errorf("unmarshal histogram: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package unlock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/content"
	"github.com/napatw/lingothai/internal/lesson/report"
)

// Service owns the level-unlock decision: a lesson's successor unlocks when
// an attempt at the current lesson clears the accuracy threshold. Unlocked
// lesson IDs and attempt counts live in Redis, keyed per user.
type Service struct {
	redis     *redis.Client
	threshold int
	logger    zerolog.Logger
}

var _ report.UnlockChecker = (*Service)(nil)

func NewService(redisClient *redis.Client, threshold int, logger zerolog.Logger) *Service {
	if threshold <= 0 {
		threshold = 70
	}
	return &Service{
		redis:     redisClient,
		threshold: threshold,
		logger:    logger.With().Str("component", "unlock").Logger(),
	}
}

func (s *Service) setKey(userID uuid.UUID) string {
	return fmt.Sprintf("unlock:user:%s", userID)
}

func (s *Service) attemptsKey(userID uuid.UUID) string {
	return fmt.Sprintf("unlock:attempts:%s", userID)
}

// CheckAndUnlock records the attempt and, when it clears the threshold,
// marks the next lesson as unlocked. Returns whether the successor is now
// (or already was) unlocked.
func (s *Service) CheckAndUnlock(ctx context.Context, userID uuid.UUID, lessonID string, att report.Attempt) (bool, error) {
	if err := s.redis.HIncrBy(ctx, s.attemptsKey(userID), lessonID, int64(att.Attempts)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("lesson_id", lessonID).Msg("attempt counter update failed")
	}

	nextID := content.NextID(lessonID)
	if nextID == "" {
		// Last lesson: passing it unlocks nothing, but the attempt counts.
		return att.Accuracy >= s.threshold, nil
	}

	if att.Accuracy < s.threshold {
		already, err := s.redis.SIsMember(ctx, s.setKey(userID), nextID).Result()
		if err != nil {
			return false, fmt.Errorf("check unlock: %w", err)
		}
		return already, nil
	}

	if err := s.redis.SAdd(ctx, s.setKey(userID), nextID).Err(); err != nil {
		return false, fmt.Errorf("record unlock: %w", err)
	}
	s.logger.Info().Str("user_id", userID.String()).Str("unlocked", nextID).Msg("next lesson unlocked")
	return true, nil
}

// Unlocked lists the lesson IDs the user has opened beyond the first.
func (s *Service) Unlocked(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.setKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	return ids, nil
}

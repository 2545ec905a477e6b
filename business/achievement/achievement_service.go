package achievement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
)

// JobGrantAchievementReward is the queue job consumed by the reward worker.
// Delivery is at least once; GrantQueuedReward is idempotent on its own.
const JobGrantAchievementReward = "grant_achievement_reward"

// AchievementRepository contract interface. Implementations may cache;
// definitions are immutable at evaluation time.
type AchievementRepository interface {
	FindActiveByTriggerEvent(ctx context.Context, triggerEvent string) ([]domain.Achievement, error)
	FindByKey(ctx context.Context, key string) (domain.Achievement, error)
}

// ProgressRepository contract interface. All three mutations must be atomic
// conditional writes: concurrent qualifying events for the same (user,
// achievement) pair must resolve to exactly one unlock and exactly one
// reward grant.
type ProgressRepository interface {
	Get(ctx context.Context, userID uint, achievementKey string) (domain.UserAchievement, error)
	// IncrementProgress bumps the counter by one, never past max, and
	// returns the counter value after the write.
	IncrementProgress(ctx context.Context, userID uint, achievementKey string, max int) (int, error)
	// Unlock sets unlocked_at only when it is still null. Returns whether
	// this call won the unlock.
	Unlock(ctx context.Context, userID uint, achievementKey string) (bool, error)
	// MarkRewardGranted flips the reward flag only when the pair is unlocked
	// and the flag is still null. Returns whether this call won.
	MarkRewardGranted(ctx context.Context, userID uint, achievementKey string) (bool, error)
	// ClearRewardGranted nulls the reward flag again so a redelivered job
	// can claim it after a failed grant.
	ClearRewardGranted(ctx context.Context, userID uint, achievementKey string) error
}

// RulesEngine contract interface
type RulesEngine interface {
	Evaluate(conditions []domain.Condition, ctxMap map[string]any) bool
}

// Queue contract interface, at-least-once delivery.
type Queue interface {
	Enqueue(ctx context.Context, jobName string, payload map[string]any) error
}

// PointsGranter contract interface (the ledger).
type PointsGranter interface {
	Grant(ctx context.Context, userID uint, basePoints int64, description string, tempMultiplier float64) (int64, int64, error)
}

// ActionLogRepository contract interface
type ActionLogRepository interface {
	Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error
}

// Notifier contract interface, fire and forget. Failures never roll back
// economy state.
type Notifier interface {
	AchievementUnlocked(ctx context.Context, userID uint, a domain.Achievement) error
	AchievementProgress(ctx context.Context, userID uint, a domain.Achievement, count int) error
}

type Service struct {
	achievementRepo AchievementRepository
	progressRepo    ProgressRepository
	rules           RulesEngine
	queue           Queue
	granter         PointsGranter
	actionLogRepo   ActionLogRepository
	notifier        Notifier
}

func NewService(
	achievementRepo AchievementRepository,
	progressRepo ProgressRepository,
	rules RulesEngine,
	queue Queue,
	granter PointsGranter,
	actionLogRepo ActionLogRepository,
	notifier Notifier,
) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		progressRepo:    progressRepo,
		rules:           rules,
		queue:           queue,
		granter:         granter,
		actionLogRepo:   actionLogRepo,
		notifier:        notifier,
	}
}

// EvaluateForEvent runs every active achievement bound to triggerEvent
// against the event context. Qualifying events bump the progress counter;
// the bump that reaches the threshold unlocks the achievement exactly once
// and hands the reward grant to the queue.
func (s *Service) EvaluateForEvent(ctx context.Context, userID uint, triggerEvent string, ec domain.EventContext) error {
	defs, err := s.achievementRepo.FindActiveByTriggerEvent(ctx, triggerEvent)
	if err != nil {
		return fmt.Errorf("load achievements for %q: %w", triggerEvent, err)
	}
	if len(defs) == 0 {
		return nil
	}

	ctxMap := ec.ToMap()

	for _, def := range defs {
		if err := s.evaluateOne(ctx, userID, def, ctxMap); err != nil {
			// one broken definition must not starve the rest
			logger.Error("achievement evaluation failed",
				"user_id", userID,
				"achievement", def.Key,
				"error", err,
			)
		}
	}

	return nil
}

func (s *Service) evaluateOne(ctx context.Context, userID uint, def domain.Achievement, ctxMap map[string]any) error {
	progress, err := s.progressRepo.Get(ctx, userID, def.Key)
	if err == nil && progress.UnlockedAt != nil {
		return nil
	}

	conditions, err := parseConditions(def.Conditions)
	if err != nil {
		return fmt.Errorf("parse conditions: %w", err)
	}

	if !s.rules.Evaluate(conditions, ctxMap) {
		return nil
	}

	count, err := s.progressRepo.IncrementProgress(ctx, userID, def.Key, def.TriggerCount)
	if err != nil {
		return fmt.Errorf("increment progress: %w", err)
	}

	if count < def.TriggerCount {
		if count == def.TriggerCount-1 && s.notifier != nil {
			if err := s.notifier.AchievementProgress(ctx, userID, def, count); err != nil {
				logger.Warn("achievement progress notification failed", "achievement", def.Key, "error", err)
			}
		}
		return nil
	}

	won, err := s.progressRepo.Unlock(ctx, userID, def.Key)
	if err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	if !won {
		// somebody else's tick got here first
		return nil
	}

	AchievementsUnlockedTotal.WithLabelValues(def.Key).Inc()

	logger.Info("achievement unlocked", "user_id", userID, "achievement", def.Key)

	if err := s.actionLogRepo.Append(ctx, userID, domain.ActionTypeAchievement, def.Key, map[string]any{
		"title":         def.Title,
		"points_reward": def.PointsReward,
	}); err != nil {
		logger.Error("failed to append unlock audit row", "achievement", def.Key, "error", err)
	}

	if def.PointsReward > 0 {
		if err := s.queue.Enqueue(ctx, JobGrantAchievementReward, map[string]any{
			"user_id":         float64(userID),
			"achievement_key": def.Key,
		}); err != nil {
			return fmt.Errorf("enqueue reward grant: %w", err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.AchievementUnlocked(ctx, userID, def); err != nil {
			logger.Warn("achievement unlock notification failed", "achievement", def.Key, "error", err)
		}
	}

	return nil
}

// GrantQueuedReward is the queue-side half of an unlock. The queue delivers
// at least once, so the grant is gated on a conditional reward flag: a
// redelivered job finds the flag set and does nothing. A failed grant
// releases the flag again, otherwise the retry would no-op and the reward
// would be lost for good.
func (s *Service) GrantQueuedReward(ctx context.Context, userID uint, achievementKey string) error {
	def, err := s.achievementRepo.FindByKey(ctx, achievementKey)
	if err != nil {
		return fmt.Errorf("load achievement %q: %w", achievementKey, err)
	}
	if def.PointsReward <= 0 {
		return nil
	}

	won, err := s.progressRepo.MarkRewardGranted(ctx, userID, achievementKey)
	if err != nil {
		return fmt.Errorf("mark reward granted: %w", err)
	}
	if !won {
		logger.Debug("achievement reward already granted", "user_id", userID, "achievement", achievementKey)
		return nil
	}

	if _, _, err := s.granter.Grant(ctx, userID, def.PointsReward, def.Title, 1.0); err != nil {
		if clearErr := s.progressRepo.ClearRewardGranted(ctx, userID, achievementKey); clearErr != nil {
			logger.Error("reward flag stuck after failed grant",
				"user_id", userID,
				"achievement", achievementKey,
				"error", clearErr,
			)
		}
		return fmt.Errorf("grant achievement reward: %w", err)
	}

	return nil
}

func parseConditions(raw []byte) ([]domain.Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var conditions []domain.Condition
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, err
	}

	return conditions, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserAchievementRepository struct {
	DB *gorm.DB
}

func NewUserAchievementRepository(db *gorm.DB) *UserAchievementRepository {
	return &UserAchievementRepository{
		DB: db,
	}
}

func (r *UserAchievementRepository) Get(ctx context.Context, userID uint, achievementKey string) (domain.UserAchievement, error) {
	var progress domain.UserAchievement

	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND achievement_key = ?", userID, achievementKey).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserAchievement{}, fmt.Errorf("progress %d/%q: %w", userID, achievementKey, domain.ErrNotFound)
		}
		return domain.UserAchievement{}, err
	}

	return progress, nil
}

// IncrementProgress bumps the counter by one inside the database, capped at
// max and frozen once unlocked, then returns the value after the write. The
// insert-or-ignore plus in-place increment keeps concurrent qualifying events
// from double counting.
func (r *UserAchievementRepository) IncrementProgress(ctx context.Context, userID uint, achievementKey string, max int) (int, error) {
	var count int

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := domain.UserAchievement{
			UserID:         userID,
			AchievementKey: achievementKey,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		result := tx.Model(&domain.UserAchievement{}).
			Where("user_id = ? AND achievement_key = ? AND trigger_count < ? AND unlocked_at IS NULL",
				userID, achievementKey, max).
			Update("trigger_count", gorm.Expr("trigger_count + 1"))
		if result.Error != nil {
			return result.Error
		}

		var progress domain.UserAchievement
		if err := tx.Where("user_id = ? AND achievement_key = ?", userID, achievementKey).
			First(&progress).Error; err != nil {
			return err
		}
		count = progress.TriggerCount

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Unlock stamps unlocked_at only while it is still null. Returns whether this
// call won the transition.
func (r *UserAchievementRepository) Unlock(ctx context.Context, userID uint, achievementKey string) (bool, error) {
	now := time.Now()

	result := r.DB.WithContext(ctx).Model(&domain.UserAchievement{}).
		Where("user_id = ? AND achievement_key = ? AND unlocked_at IS NULL", userID, achievementKey).
		Update("unlocked_at", now)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// MarkRewardGranted flips the reward flag on an unlocked pair only while the
// flag is still null. The queue redelivers jobs, this is what keeps the
// reward from paying twice.
func (r *UserAchievementRepository) MarkRewardGranted(ctx context.Context, userID uint, achievementKey string) (bool, error) {
	now := time.Now()

	result := r.DB.WithContext(ctx).Model(&domain.UserAchievement{}).
		Where("user_id = ? AND achievement_key = ? AND unlocked_at IS NOT NULL AND reward_granted_at IS NULL",
			userID, achievementKey).
		Update("reward_granted_at", now)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ClearRewardGranted nulls the reward flag so a redelivered job can claim it
// again after a grant that failed mid-flight.
func (r *UserAchievementRepository) ClearRewardGranted(ctx context.Context, userID uint, achievementKey string) error {
	return r.DB.WithContext(ctx).Model(&domain.UserAchievement{}).
		Where("user_id = ? AND achievement_key = ? AND reward_granted_at IS NOT NULL",
			userID, achievementKey).
		Update("reward_granted_at", nil).Error
}

func (r *UserAchievementRepository) FindUnlockedByUser(ctx context.Context, userID uint) ([]domain.UserAchievement, error) {
	var unlocked []domain.UserAchievement

	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND unlocked_at IS NOT NULL", userID).
		Order("unlocked_at DESC").
		Find(&unlocked).Error
	if err != nil {
		return nil, err
	}

	return unlocked, nil
}

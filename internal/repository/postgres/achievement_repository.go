package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{
		DB: db,
	}
}

func (r *AchievementRepository) FindActiveByTriggerEvent(ctx context.Context, triggerEvent string) ([]domain.Achievement, error) {
	var achievements []domain.Achievement

	err := r.DB.WithContext(ctx).
		Where("trigger_event = ? AND is_active = ?", triggerEvent, true).
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}

	return achievements, nil
}

func (r *AchievementRepository) FindByKey(ctx context.Context, key string) (domain.Achievement, error) {
	var achievement domain.Achievement

	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&achievement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Achievement{}, fmt.Errorf("achievement %q: %w", key, domain.ErrNotFound)
		}
		return domain.Achievement{}, err
	}

	return achievement, nil
}

func (r *AchievementRepository) FindAll(ctx context.Context) ([]domain.Achievement, error) {
	var achievements []domain.Achievement

	if err := r.DB.WithContext(ctx).Order("key ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}

	return achievements, nil
}

func (r *AchievementRepository) Upsert(ctx context.Context, achievement domain.Achievement) (domain.Achievement, error) {
	var existing domain.Achievement
	err := r.DB.WithContext(ctx).Where("key = ?", achievement.Key).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.DB.WithContext(ctx).Create(&achievement).Error; err != nil {
			return domain.Achievement{}, err
		}
		return achievement, nil
	case err != nil:
		return domain.Achievement{}, err
	}

	achievement.ID = existing.ID
	achievement.CreatedAt = existing.CreatedAt
	if err := r.DB.WithContext(ctx).Save(&achievement).Error; err != nil {
		return domain.Achievement{}, err
	}

	return achievement, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/gorm"
)

type RankRepository struct {
	DB *gorm.DB
}

func NewRankRepository(db *gorm.DB) *RankRepository {
	return &RankRepository{
		DB: db,
	}
}

func (r *RankRepository) FindAll(ctx context.Context) ([]domain.Rank, error) {
	var ranks []domain.Rank

	if err := r.DB.WithContext(ctx).Order("points_required ASC").Find(&ranks).Error; err != nil {
		return nil, err
	}

	return ranks, nil
}

func (r *RankRepository) FindByKey(ctx context.Context, key string) (domain.Rank, error) {
	var rank domain.Rank

	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&rank).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Rank{}, fmt.Errorf("rank %q: %w", key, domain.ErrNotFound)
		}
		return domain.Rank{}, err
	}

	return rank, nil
}

// Upsert inserts or fully replaces the rank definition for its key.
func (r *RankRepository) Upsert(ctx context.Context, rank domain.Rank) (domain.Rank, error) {
	var existing domain.Rank
	err := r.DB.WithContext(ctx).Where("key = ?", rank.Key).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.DB.WithContext(ctx).Create(&rank).Error; err != nil {
			return domain.Rank{}, err
		}
		return rank, nil
	case err != nil:
		return domain.Rank{}, err
	}

	rank.ID = existing.ID
	rank.CreatedAt = existing.CreatedAt
	if err := r.DB.WithContext(ctx).Save(&rank).Error; err != nil {
		return domain.Rank{}, err
	}

	return rank, nil
}

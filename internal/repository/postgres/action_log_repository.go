package postgres

import (
	"context"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActionLogRepository struct {
	DB *gorm.DB
}

func NewActionLogRepository(db *gorm.DB) *ActionLogRepository {
	return &ActionLogRepository{
		DB: db,
	}
}

func (r *ActionLogRepository) Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error {
	entry := domain.ActionLog{
		UserID:     userID,
		ActionType: actionType,
		ObjectID:   objectID,
		MetaData:   datatypes.JSONMap(meta),
	}

	return r.DB.WithContext(ctx).Create(&entry).Error
}

func (r *ActionLogRepository) CountByType(ctx context.Context, userID uint, actionType string) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).Model(&domain.ActionLog{}).
		Where("user_id = ? AND action_type = ?", userID, actionType).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ActionLogRepository) FindByUser(ctx context.Context, userID uint, limit, offset int) ([]domain.ActionLog, error) {
	var entries []domain.ActionLog

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

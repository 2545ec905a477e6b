package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardCodeRepository struct {
	DB *gorm.DB
}

func NewRewardCodeRepository(db *gorm.DB) *RewardCodeRepository {
	return &RewardCodeRepository{
		DB: db,
	}
}

// FindValidCode returns the code row only while it is still unused. A missing
// code and a used code are indistinguishable to the caller on purpose.
func (r *RewardCodeRepository) FindValidCode(ctx context.Context, code string) (domain.RewardCode, error) {
	var rewardCode domain.RewardCode

	err := r.DB.WithContext(ctx).Where("code = ? AND is_used = ?", code, false).First(&rewardCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RewardCode{}, domain.ErrCodeInvalidOrUsed
		}
		return domain.RewardCode{}, err
	}

	return rewardCode, nil
}

// ClaimAndCountScans claims the code for userID, logs the scan, and counts the
// user's scan rows, all in one transaction. The WHERE is_used = false clause
// makes the claim a compare-and-swap: under concurrent claims exactly one
// caller sees a row update, everyone else gets ErrCodeInvalidOrUsed. The user
// row is locked before counting because under READ COMMITTED two concurrent
// insert+count pairs for the same user would each see only their own row and
// both report count == 1.
func (r *RewardCodeRepository) ClaimAndCountScans(ctx context.Context, codeID, userID uint, code, sku string) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&user, userID).Error; err != nil {
			return err
		}

		result := tx.Model(&domain.RewardCode{}).
			Where("id = ? AND is_used = ?", codeID, false).
			Updates(map[string]interface{}{
				"is_used":            true,
				"claimed_by_user_id": userID,
				"claimed_at":         time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrCodeInvalidOrUsed
		}

		entry := domain.ActionLog{
			UserID:     userID,
			ActionType: domain.ActionTypeScan,
			ObjectID:   code,
			MetaData:   datatypes.JSONMap{"sku": sku},
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&domain.ActionLog{}).
			Where("user_id = ? AND action_type = ?", userID, domain.ActionTypeScan).
			Count(&count).Error
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *RewardCodeRepository) Create(ctx context.Context, code *domain.RewardCode) error {
	return r.DB.WithContext(ctx).Create(code).Error
}

func (r *RewardCodeRepository) CreateBatch(ctx context.Context, codes []domain.RewardCode) error {
	if len(codes) == 0 {
		return fmt.Errorf("empty code batch: %w", domain.ErrInvalidInput)
	}

	return r.DB.WithContext(ctx).CreateInBatches(codes, 500).Error
}

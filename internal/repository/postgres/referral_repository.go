package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	DB *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{
		DB: db,
	}
}

func (r *ReferralRepository) Create(ctx context.Context, referral domain.Referral) (domain.Referral, error) {
	if err := r.DB.WithContext(ctx).Create(&referral).Error; err != nil {
		return domain.Referral{}, err
	}

	return referral, nil
}

func (r *ReferralRepository) FindByReferredUser(ctx context.Context, referredUserID uint) (domain.Referral, error) {
	var referral domain.Referral

	err := r.DB.WithContext(ctx).Where("referred_user_id = ?", referredUserID).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Referral{}, fmt.Errorf("referral for user %d: %w", referredUserID, domain.ErrNotFound)
		}
		return domain.Referral{}, err
	}

	return referral, nil
}

// MarkConverted stamps converted_at only while it is still null, so a
// referral pays out exactly once no matter how many scan events race in.
func (r *ReferralRepository) MarkConverted(ctx context.Context, referralID uint) (bool, error) {
	now := time.Now()

	result := r.DB.WithContext(ctx).Model(&domain.Referral{}).
		Where("id = ? AND converted_at IS NULL", referralID).
		Update("converted_at", now)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *ReferralRepository) FindByReferrer(ctx context.Context, referrerUserID uint) ([]domain.Referral, error) {
	var referrals []domain.Referral

	err := r.DB.WithContext(ctx).Where("referrer_user_id = ?", referrerUserID).
		Order("created_at DESC").Find(&referrals).Error
	if err != nil {
		return nil, err
	}

	return referrals, nil
}

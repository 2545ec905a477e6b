package domain

import "time"

// Referral links a referred user back to their referrer. It converts at most
// once, on the referred user's first product scan.
type Referral struct {
	ID             uint       `gorm:"primaryKey"`
	ReferrerUserID uint       `gorm:"column:referrer_user_id;index;not null"`
	ReferredUserID uint       `gorm:"column:referred_user_id;uniqueIndex;not null"`
	Code           string     `gorm:"column:code;not null"`
	ConvertedAt    *time.Time `gorm:"column:converted_at"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Referral) TableName() string {
	return "referrals"
}

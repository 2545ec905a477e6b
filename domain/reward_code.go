package domain

import "time"

// RewardCode is a single-use scannable token. The unused -> used transition is
// one way and happens through a conditional update, never a read-then-write.
type RewardCode struct {
	ID              uint       `gorm:"primaryKey"`
	Code            string     `gorm:"column:code;uniqueIndex;not null"`
	SKU             string     `gorm:"column:sku;not null"`
	IsUsed          bool       `gorm:"column:is_used;default:false"`
	ClaimedByUserID *uint      `gorm:"column:claimed_by_user_id"`
	ClaimedAt       *time.Time `gorm:"column:claimed_at"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RewardCode) TableName() string {
	return "reward_codes"
}

package domain

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID             uint    `gorm:"primaryKey"`
	FullName       string  `gorm:"column:full_name;not null"`
	Email          string  `gorm:"column:email;unique;not null"`
	Password       string  `gorm:"column:password;not null"`
	Role           string  `gorm:"column:role;default:customer"`
	PointsBalance  int64   `gorm:"column:points_balance;default:0"`
	LifetimePoints int64   `gorm:"column:lifetime_points;default:0"`
	CurrentRankKey string  `gorm:"column:current_rank_key;default:member"`
	ReferralCode   string  `gorm:"column:referral_code;uniqueIndex"`
	ReferredBy     *string `gorm:"column:referred_by"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

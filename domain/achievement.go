package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Achievement struct {
	ID           uint           `gorm:"primaryKey"`
	Key          string         `gorm:"column:key;uniqueIndex;not null"`
	Title        string         `gorm:"column:title;not null"`
	PointsReward int64          `gorm:"column:points_reward;default:0"`
	TriggerEvent string         `gorm:"column:trigger_event;index;not null"`
	TriggerCount int            `gorm:"column:trigger_count;default:1"`
	Conditions   datatypes.JSON `gorm:"column:conditions"`
	IsActive     bool           `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement is per-user progress toward one achievement.
// TriggerCount only ever goes up; UnlockedAt is terminal once set.
// RewardGrantedAt guards the queued reward job against at-least-once redelivery.
type UserAchievement struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          uint       `gorm:"column:user_id;uniqueIndex:ux_user_achievement,priority:1;not null"`
	AchievementKey  string     `gorm:"column:achievement_key;uniqueIndex:ux_user_achievement,priority:2;not null"`
	TriggerCount    int        `gorm:"column:trigger_count;default:0"`
	UnlockedAt      *time.Time `gorm:"column:unlocked_at"`
	RewardGrantedAt *time.Time `gorm:"column:reward_granted_at"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

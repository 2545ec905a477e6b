package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionTypeScan         = "scan"
	ActionTypePointsGrant  = "points_grant"
	ActionTypeRedemption   = "redemption"
	ActionTypeAchievement  = "achievement_unlocked"
	ActionTypeRankChange   = "rank_change"
	ActionTypeReferralConv = "referral_converted"
)

// ActionLog is append only. It doubles as the audit trail and as the source of
// truth for "how many times did user X do Y" counts (scan counting in particular).
type ActionLog struct {
	ID         uint              `gorm:"primaryKey"`
	UserID     uint              `gorm:"column:user_id;index:idx_action_user_type,priority:1;not null"`
	ActionType string            `gorm:"column:action_type;index:idx_action_user_type,priority:2;not null"`
	ObjectID   string            `gorm:"column:object_id"`
	MetaData   datatypes.JSONMap `gorm:"column:meta_data"`
	CreatedAt  time.Time
}

func (ActionLog) TableName() string {
	return "action_logs"
}

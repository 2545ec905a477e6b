package domain

import "time"

// Rank is a loyalty tier. Exactly one rank must have PointsRequired == 0,
// that one is the floor every user starts at.
type Rank struct {
	ID              uint    `gorm:"primaryKey"`
	Key             string  `gorm:"column:key;uniqueIndex;not null"`
	Name            string  `gorm:"column:name;not null"`
	PointsRequired  int64   `gorm:"column:points_required;not null"`
	PointMultiplier float64 `gorm:"column:point_multiplier;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Rank) TableName() string {
	return "ranks"
}

package domain

import "time"

type Order struct {
	ID          uint   `gorm:"primaryKey"`
	ReferenceID string `gorm:"column:reference_id;uniqueIndex;not null"`
	UserID      uint   `gorm:"column:user_id;index;not null"`
	ProductID   uint   `gorm:"column:product_id;not null"`
	PointsSpent int64  `gorm:"column:points_spent;not null"`
	OrderStatus string `gorm:"column:order_status;default:PENDING"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Order) TableName() string {
	return "orders"
}

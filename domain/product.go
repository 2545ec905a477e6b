package domain

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog reward redeemable with points. RequiredRankKey, when
// set, gates redemption to users at or above that rank.
type Product struct {
	ID              uint   `gorm:"primaryKey"`
	SKU             string `gorm:"column:sku;uniqueIndex;not null"`
	ProductName     string `gorm:"column:product_name;not null"`
	ProductCategory string `gorm:"column:product_category"`
	PointsCost      int64  `gorm:"column:points_cost;not null"`
	RequiredRankKey string `gorm:"column:required_rank_key"`
	IsActive        bool   `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}

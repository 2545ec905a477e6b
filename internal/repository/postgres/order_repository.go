package postgres

import (
	"context"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		DB: db,
	}
}

// CreateRedemption debits the user's balance and inserts the redemption order
// in one transaction. The debit is conditional on the balance still covering
// the cost at write time, so two concurrent redemptions can never spend the
// same points twice.
func (r *OrderRepository) CreateRedemption(ctx context.Context, userID uint, product domain.Product, referenceID string) (domain.Order, error) {
	order := domain.Order{
		ReferenceID: referenceID,
		UserID:      userID,
		ProductID:   product.ID,
		PointsSpent: product.PointsCost,
		OrderStatus: "PENDING",
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.User{}).
			Where("id = ? AND points_balance >= ?", userID, product.PointsCost).
			Update("points_balance", gorm.Expr("points_balance - ?", product.PointsCost))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("balance below %d points: %w", product.PointsCost, domain.ErrInsufficientPoints)
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	var orders []domain.Order

	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, referenceID, status string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("reference_id = ?", referenceID).
		Update("order_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %q: %w", referenceID, domain.ErrNotFound)
	}

	return nil
}

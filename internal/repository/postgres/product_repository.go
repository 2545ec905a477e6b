package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (domain.Product, error) {
	var product domain.Product

	err := r.DB.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, fmt.Errorf("product %q: %w", sku, domain.ErrNotFound)
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (r *ProductRepository) FindAllActive(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product

	err := r.DB.WithContext(ctx).Where("is_active = ?", true).
		Order("points_cost ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, product domain.Product) (domain.Product, error) {
	var existing domain.Product
	err := r.DB.WithContext(ctx).Where("sku = ?", product.SKU).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.DB.WithContext(ctx).Create(&product).Error; err != nil {
			return domain.Product{}, err
		}
		return product, nil
	case err != nil:
		return domain.Product{}, err
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	if err := r.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

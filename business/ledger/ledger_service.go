package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"

	"github.com/google/uuid"
)

// UserEconomyRepository contract interface. AddPoints must be an atomic
// in-place increment (never read-then-write) so concurrent grants cannot
// lose updates. DeductBalance must only succeed when the balance covers the
// amount at write time.
type UserEconomyRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	// AddPoints increments balance and lifetime by amount and returns the
	// updated user row.
	AddPoints(ctx context.Context, userID uint, amount int64) (domain.User, error)
}

// OrderRepository contract interface. CreateRedemption runs the balance
// decrement and the order insert in one transaction: either both happen or
// neither does. Returns domain.ErrInsufficientPoints when the conditional
// decrement finds the balance short.
type OrderRepository interface {
	CreateRedemption(ctx context.Context, userID uint, product domain.Product, referenceID string) (domain.Order, error)
}

// ActionLogRepository contract interface
type ActionLogRepository interface {
	Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

// RankResolver contract interface
type RankResolver interface {
	Resolve(ctx context.Context, lifetimePoints int64) (domain.Rank, error)
	Satisfies(ctx context.Context, heldKey, requiredKey string) (bool, error)
}

// Service is the single authority for balance and lifetime point mutation.
// Nothing else in the codebase writes those columns.
type Service struct {
	userRepo      UserEconomyRepository
	orderRepo     OrderRepository
	actionLogRepo ActionLogRepository
	productRepo   ProductRepository
	rankResolver  RankResolver
	bus           *eventbus.Bus
}

func NewService(
	userRepo UserEconomyRepository,
	orderRepo OrderRepository,
	actionLogRepo ActionLogRepository,
	productRepo ProductRepository,
	rankResolver RankResolver,
	bus *eventbus.Bus,
) *Service {
	return &Service{
		userRepo:      userRepo,
		orderRepo:     orderRepo,
		actionLogRepo: actionLogRepo,
		productRepo:   productRepo,
		rankResolver:  rankResolver,
		bus:           bus,
	}
}

// Grant credits floor(basePoints * max(rankMultiplier, tempMultiplier)) to
// both balance and lifetime points, appends an audit row, and publishes
// user_points_granted. Temp multipliers are a floor under the rank
// multiplier, not a stack on top of it.
func (s *Service) Grant(ctx context.Context, userID uint, basePoints int64, description string, tempMultiplier float64) (int64, int64, error) {
	if basePoints < 0 {
		return 0, 0, fmt.Errorf("base points must not be negative: %w", domain.ErrInvalidInput)
	}
	if tempMultiplier <= 0 {
		tempMultiplier = 1.0
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("grant: %w", err)
	}

	rank, err := s.rankResolver.Resolve(ctx, user.LifetimePoints)
	if err != nil {
		return 0, 0, fmt.Errorf("grant: %w", err)
	}

	multiplier := rank.PointMultiplier
	if tempMultiplier > multiplier {
		multiplier = tempMultiplier
	}

	granted := int64(math.Floor(float64(basePoints) * multiplier))

	updated, err := s.userRepo.AddPoints(ctx, userID, granted)
	if err != nil {
		return 0, 0, fmt.Errorf("grant: %w", err)
	}

	if err := s.actionLogRepo.Append(ctx, userID, domain.ActionTypePointsGrant, "", map[string]any{
		"base_points":    basePoints,
		"multiplier":     multiplier,
		"points_granted": granted,
		"new_balance":    updated.PointsBalance,
		"description":    description,
	}); err != nil {
		// audit failure after the credit has committed: surface loudly, do not unwind
		logger.Error("failed to append grant audit row", "user_id", userID, "error", err)
	}

	PointsGrantedTotal.WithLabelValues(description).Add(float64(granted))

	s.bus.Dispatch(ctx, domain.EventUserPointsGranted, domain.PointsGrantedEvent{
		UserID:        userID,
		PointsGranted: granted,
		NewBalance:    updated.PointsBalance,
		Description:   description,
	})

	return granted, updated.PointsBalance, nil
}

// Redeem spends balance on a catalog product. Lifetime points are untouched,
// so redemption can never move a user's rank. The decrement and the order
// creation are atomic: no order without payment, no payment without an order.
func (s *Service) Redeem(ctx context.Context, userID uint, productID uint) (domain.Order, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("redeem product %d: %w", productID, err)
	}
	if !product.IsActive {
		return domain.Order{}, fmt.Errorf("product %d inactive: %w", productID, domain.ErrNotFound)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("redeem: %w", err)
	}

	ok, err := s.rankResolver.Satisfies(ctx, user.CurrentRankKey, product.RequiredRankKey)
	if err != nil {
		return domain.Order{}, fmt.Errorf("redeem rank check: %w", err)
	}
	if !ok {
		return domain.Order{}, fmt.Errorf("product requires rank %q: %w", product.RequiredRankKey, domain.ErrRankRequirementNotMet)
	}

	referenceID := uuid.NewString()

	order, err := s.orderRepo.CreateRedemption(ctx, userID, product, referenceID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("redeem: %w", err)
	}

	if err := s.actionLogRepo.Append(ctx, userID, domain.ActionTypeRedemption, order.ReferenceID, map[string]any{
		"product_id":   product.ID,
		"sku":          product.SKU,
		"points_spent": product.PointsCost,
	}); err != nil {
		logger.Error("failed to append redemption audit row", "user_id", userID, "error", err)
	}

	RedemptionsTotal.Inc()

	return order, nil
}

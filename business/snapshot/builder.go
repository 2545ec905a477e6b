package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// ActionLogRepository contract interface
type ActionLogRepository interface {
	CountByType(ctx context.Context, userID uint, actionType string) (int64, error)
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

// RankRepository contract interface
type RankRepository interface {
	FindByKey(ctx context.Context, key string) (domain.Rank, error)
}

// Builder assembles immutable event context snapshots. It is read only;
// building a snapshot never mutates anything.
type Builder struct {
	userRepo      UserRepository
	actionLogRepo ActionLogRepository
	productRepo   ProductRepository
	rankRepo      RankRepository
}

func NewBuilder(
	userRepo UserRepository,
	actionLogRepo ActionLogRepository,
	productRepo ProductRepository,
	rankRepo RankRepository,
) *Builder {
	return &Builder{
		userRepo:      userRepo,
		actionLogRepo: actionLogRepo,
		productRepo:   productRepo,
		rankRepo:      rankRepo,
	}
}

// BuildEventContext reads the user's current identity/economy/status state in
// one pass and derives engagement from the action log. The total_scans count
// is what distinguishes a first scan from a standard one downstream, so it is
// taken from the same store the scan was just logged to.
func (b *Builder) BuildEventContext(ctx context.Context, userID uint, productID *uint, meta domain.EventMeta) (domain.EventContext, error) {
	user, err := b.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.EventContext{}, fmt.Errorf("snapshot user %d: %w", userID, err)
	}

	totalScans, err := b.actionLogRepo.CountByType(ctx, userID, domain.ActionTypeScan)
	if err != nil {
		return domain.EventContext{}, fmt.Errorf("snapshot scan count: %w", err)
	}

	rankName := user.CurrentRankKey
	if rank, err := b.rankRepo.FindByKey(ctx, user.CurrentRankKey); err == nil {
		rankName = rank.Name
	}

	if meta.Time.IsZero() {
		meta.Time = time.Now()
	}

	ec := domain.EventContext{
		UserSnapshot: domain.UserSnapshot{
			Identity: domain.IdentitySnapshot{
				UserID:   user.ID,
				FullName: user.FullName,
				Email:    user.Email,
			},
			Economy: domain.EconomySnapshot{
				PointsBalance:  user.PointsBalance,
				LifetimePoints: user.LifetimePoints,
			},
			Status: domain.StatusSnapshot{
				RankKey:  user.CurrentRankKey,
				RankName: rankName,
			},
			Engagement: domain.EngagementSnapshot{
				TotalScans: totalScans,
			},
		},
		EventMeta: meta,
	}

	if productID != nil {
		product, err := b.productRepo.FindByID(ctx, *productID)
		if err != nil {
			return domain.EventContext{}, fmt.Errorf("snapshot product %d: %w", *productID, err)
		}
		ec.ProductSnapshot = &domain.ProductSnapshot{
			ProductID:   product.ID,
			SKU:         product.SKU,
			ProductName: product.ProductName,
			Category:    product.ProductCategory,
		}
	}

	return ec, nil
}

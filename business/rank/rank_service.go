package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
)

// RankRepository contract interface. Implementations may cache; rank
// definitions are read only at runtime.
type RankRepository interface {
	FindAll(ctx context.Context) ([]domain.Rank, error)
	FindByKey(ctx context.Context, key string) (domain.Rank, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	UpdateRankKey(ctx context.Context, userID uint, rankKey string) error
}

// SnapshotBuilder contract interface
type SnapshotBuilder interface {
	BuildEventContext(ctx context.Context, userID uint, productID *uint, meta domain.EventMeta) (domain.EventContext, error)
}

type Service struct {
	rankRepo RankRepository
	userRepo UserRepository
	builder  SnapshotBuilder
	bus      *eventbus.Bus
}

func NewService(rankRepo RankRepository, userRepo UserRepository, builder SnapshotBuilder, bus *eventbus.Bus) *Service {
	return &Service{
		rankRepo: rankRepo,
		userRepo: userRepo,
		builder:  builder,
		bus:      bus,
	}
}

// Resolve maps lifetime points to the highest qualifying rank. Ranks sort by
// points_required descending; the first one at or below lifetimePoints wins.
// The floor rank (points_required == 0) always qualifies, so the fallback
// only fires on a misconfigured table.
func (s *Service) Resolve(ctx context.Context, lifetimePoints int64) (domain.Rank, error) {
	ranks, err := s.rankRepo.FindAll(ctx)
	if err != nil {
		return domain.Rank{}, fmt.Errorf("load ranks: %w", err)
	}
	if len(ranks) == 0 {
		return domain.Rank{}, fmt.Errorf("rank table is empty: %w", domain.ErrNotFound)
	}

	sorted := sortByPointsDesc(ranks)
	for _, r := range sorted {
		if r.PointsRequired <= lifetimePoints {
			return r, nil
		}
	}

	// floor fallback
	return sorted[len(sorted)-1], nil
}

// RecalculateAndPersist re-derives the user's rank from lifetime points and,
// on a transition, persists the new key and publishes user_rank_changed with
// a fresh snapshot. This is the only path that announces rank changes; the
// ledger never publishes them directly.
func (s *Service) RecalculateAndPersist(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("recalculate rank: %w", err)
	}

	resolved, err := s.Resolve(ctx, user.LifetimePoints)
	if err != nil {
		return err
	}

	if resolved.Key == user.CurrentRankKey {
		return nil
	}

	if err := s.userRepo.UpdateRankKey(ctx, userID, resolved.Key); err != nil {
		return fmt.Errorf("persist rank key: %w", err)
	}

	logger.Info("user rank changed",
		"user_id", userID,
		"old_rank", user.CurrentRankKey,
		"new_rank", resolved.Key,
		"lifetime_points", user.LifetimePoints,
	)

	ec, err := s.builder.BuildEventContext(ctx, userID, nil, domain.EventMeta{})
	if err != nil {
		return fmt.Errorf("rank change snapshot: %w", err)
	}

	s.bus.Dispatch(ctx, domain.EventUserRankChanged, domain.RankChangedEvent{
		UserID:     userID,
		OldRankKey: user.CurrentRankKey,
		NewRankKey: resolved.Key,
		Context:    ec,
	})

	return nil
}

// Satisfies reports whether holding rank heldKey meets a requirement of
// requiredKey. Comparison is by position in the points_required order, not by
// the keys themselves.
func (s *Service) Satisfies(ctx context.Context, heldKey, requiredKey string) (bool, error) {
	if requiredKey == "" {
		return true, nil
	}

	ranks, err := s.rankRepo.FindAll(ctx)
	if err != nil {
		return false, fmt.Errorf("load ranks: %w", err)
	}

	var held, required *domain.Rank
	for i := range ranks {
		switch ranks[i].Key {
		case heldKey:
			held = &ranks[i]
		case requiredKey:
			required = &ranks[i]
		}
	}
	if required == nil {
		return false, fmt.Errorf("required rank %q: %w", requiredKey, domain.ErrNotFound)
	}
	if held == nil {
		return false, nil
	}

	return held.PointsRequired >= required.PointsRequired, nil
}

func sortByPointsDesc(ranks []domain.Rank) []domain.Rank {
	sorted := make([]domain.Rank, len(ranks))
	copy(sorted, ranks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PointsRequired > sorted[j].PointsRequired
	})
	return sorted
}

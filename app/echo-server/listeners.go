package main

import (
	"context"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/business/achievement"
	"github.com/Anwarisbased/laravelCR-sub000/business/ledger"
	"github.com/Anwarisbased/laravelCR-sub000/business/rank"
	"github.com/Anwarisbased/laravelCR-sub000/business/referral"
	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/internal/repository/notification"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/config"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
)

// RankLookup contract interface
type RankLookup interface {
	FindByKey(ctx context.Context, key string) (domain.Rank, error)
}

// ActionLogAppender contract interface
type ActionLogAppender interface {
	Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error
}

// registerEventListeners wires the scan cascade. Achievement rules evaluate
// against the event's own snapshot, built at scan time, so within a topic
// the point grant running first does not change what the rules see — the
// ordering only guarantees the ledger and referral writes land before
// achievement side effects enqueue.
func registerEventListeners(
	bus *eventbus.Bus,
	cfg *config.Config,
	ledgerService *ledger.Service,
	rankService *rank.Service,
	achievementService *achievement.Service,
	referralService *referral.Service,
	notifier *notification.Notifier,
	rankLookup RankLookup,
	actionLog ActionLogAppender,
) {
	// A first scan redeems the welcome gift; every later scan earns the
	// standard scan points.
	bus.Listen(domain.EventFirstProductScanned, func(ctx context.Context, payload any) error {
		ev, ok := payload.(domain.ScanEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}

		bus.Dispatch(ctx, domain.EventPointsToBeGranted, domain.PointsGrantRequest{
			UserID:      ev.UserID,
			BasePoints:  cfg.Loyalty.WelcomeGiftPoints,
			Description: "Welcome Gift",
		})
		return nil
	})

	bus.Listen(domain.EventStandardProductScanned, func(ctx context.Context, payload any) error {
		ev, ok := payload.(domain.ScanEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}

		bus.Dispatch(ctx, domain.EventPointsToBeGranted, domain.PointsGrantRequest{
			UserID:      ev.UserID,
			BasePoints:  cfg.Loyalty.StandardScanPoints,
			Description: "Product Scan",
		})
		return nil
	})

	bus.Listen(domain.EventPointsToBeGranted, func(ctx context.Context, payload any) error {
		req, ok := payload.(domain.PointsGrantRequest)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}

		_, _, err := ledgerService.Grant(ctx, req.UserID, req.BasePoints, req.Description, req.TempMultiplier)
		return err
	})

	// Every grant can move the user across a rank threshold.
	bus.Listen(domain.EventUserPointsGranted, func(ctx context.Context, payload any) error {
		ev, ok := payload.(domain.PointsGrantedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}

		return rankService.RecalculateAndPersist(ctx, ev.UserID)
	})

	// A referral converts on the referred user's first scan, before
	// achievements so the referrer's bonus grant is part of the same cascade.
	bus.Listen(domain.EventFirstProductScanned, func(ctx context.Context, payload any) error {
		ev, ok := payload.(domain.ScanEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}

		return referralService.Convert(ctx, ev.UserID)
	})

	for _, topic := range []string{domain.EventFirstProductScanned, domain.EventStandardProductScanned} {
		topic := topic
		bus.Listen(topic, func(ctx context.Context, payload any) error {
			ev, ok := payload.(domain.ScanEvent)
			if !ok {
				return fmt.Errorf("unexpected payload %T", payload)
			}

			return achievementService.EvaluateForEvent(ctx, ev.UserID, topic, ev.Context)
		})
	}

	bus.Listen(domain.EventUserRankChanged, func(ctx context.Context, payload any) error {
		ev, ok := payload.(domain.RankChangedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}

		newRank, err := rankLookup.FindByKey(ctx, ev.NewRankKey)
		if err != nil {
			return err
		}

		if err := actionLog.Append(ctx, ev.UserID, domain.ActionTypeRankChange, ev.NewRankKey, map[string]any{
			"old_rank_key": ev.OldRankKey,
			"new_rank_key": ev.NewRankKey,
		}); err != nil {
			logger.Warn("failed to append rank change audit row", "user_id", ev.UserID, "error", err)
		}

		if err := notifier.RankChanged(ctx, ev.UserID, newRank); err != nil {
			logger.Warn("rank change notification failed", "user_id", ev.UserID, "error", err)
		}
		return nil
	})
}

package referral

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
)

// ReferralRepository contract interface. MarkConverted must be conditional
// on converted_at IS NULL so a referral pays out at most once no matter how
// many scan events race through it.
type ReferralRepository interface {
	Create(ctx context.Context, referral domain.Referral) (domain.Referral, error)
	FindByReferredUser(ctx context.Context, referredUserID uint) (domain.Referral, error)
	// MarkConverted stamps converted_at and reports whether this call won.
	MarkConverted(ctx context.Context, referralID uint) (bool, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByReferralCode(ctx context.Context, code string) (domain.User, error)
}

// PointsGranter contract interface, satisfied by the ledger service.
type PointsGranter interface {
	Grant(ctx context.Context, userID uint, basePoints int64, description string, tempMultiplier float64) (int64, int64, error)
}

// ActionLogRepository contract interface
type ActionLogRepository interface {
	Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error
}

type Service struct {
	referralRepo  ReferralRepository
	userRepo      UserRepository
	granter       PointsGranter
	actionLogRepo ActionLogRepository
	bus           *eventbus.Bus
	bonusPoints   int64
}

func NewService(
	referralRepo ReferralRepository,
	userRepo UserRepository,
	granter PointsGranter,
	actionLogRepo ActionLogRepository,
	bus *eventbus.Bus,
	bonusPoints int64,
) *Service {
	return &Service{
		referralRepo:  referralRepo,
		userRepo:      userRepo,
		granter:       granter,
		actionLogRepo: actionLogRepo,
		bus:           bus,
		bonusPoints:   bonusPoints,
	}
}

// Link records a pending referral for a freshly registered user. A bad or
// unknown code is not an error to the caller: registration must succeed
// whether or not the referral attaches.
func (s *Service) Link(ctx context.Context, referredUserID uint, code string) error {
	if code == "" {
		return nil
	}

	referrer, err := s.userRepo.FindByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("referral code not recognized, skipping link", "code", code)
			return nil
		}
		return fmt.Errorf("look up referrer by code: %w", err)
	}
	if referrer.ID == referredUserID {
		logger.Warn("user attempted self referral", "user_id", referredUserID)
		return nil
	}

	_, err = s.referralRepo.Create(ctx, domain.Referral{
		ReferrerUserID: referrer.ID,
		ReferredUserID: referredUserID,
		Code:           code,
	})
	if err != nil {
		return fmt.Errorf("create pending referral: %w", err)
	}
	return nil
}

// Convert pays out the referrer's bonus when the referred user completes
// their first product scan. A referral converts at most once; later calls
// are no-ops. Users with no pending referral are the common case and return
// nil.
func (s *Service) Convert(ctx context.Context, referredUserID uint) error {
	referral, err := s.referralRepo.FindByReferredUser(ctx, referredUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("look up referral for user %d: %w", referredUserID, err)
	}
	if referral.ConvertedAt != nil {
		return nil
	}

	won, err := s.referralRepo.MarkConverted(ctx, referral.ID)
	if err != nil {
		return fmt.Errorf("mark referral %d converted: %w", referral.ID, err)
	}
	if !won {
		// Another scan event got here first.
		return nil
	}

	ReferralConversionsTotal.Inc()

	_, _, err = s.granter.Grant(ctx, referral.ReferrerUserID, s.bonusPoints, "Referral Bonus", 1.0)
	if err != nil {
		// Conversion is already stamped; surface the failed payout loudly
		// instead of unwinding it.
		logger.Error("referral converted but bonus grant failed", "error", err,
			"referral_id", referral.ID,
			"referrer_user_id", referral.ReferrerUserID,
		)
		return fmt.Errorf("grant referral bonus: %w", err)
	}

	if err := s.actionLogRepo.Append(ctx, referral.ReferrerUserID, domain.ActionTypeReferralConv, strconv.FormatUint(uint64(referral.ReferredUserID), 10), map[string]any{
		"referred_user_id": referral.ReferredUserID,
		"bonus_points":     s.bonusPoints,
		"code":             referral.Code,
	}); err != nil {
		logger.Error("failed to append referral conversion audit row", "error", err, "referral_id", referral.ID)
	}

	s.bus.Dispatch(ctx, domain.EventReferralConverted, domain.ReferralConvertedEvent{
		ReferrerUserID: referral.ReferrerUserID,
		ReferredUserID: referral.ReferredUserID,
		Code:           referral.Code,
	})

	return nil
}

package claim

import (
	"context"
	"fmt"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/metrics"
)

// CodeRepository contract interface. FindValidCode must treat a used code and
// a nonexistent code identically. ClaimAndCountScans must claim the code with
// a conditional write only one concurrent claimer can win, log the scan, and
// count the user's scan rows, all in one atomic unit per user: a code is
// never consumed without its scan row, and two concurrent scans can never
// both observe count == 1.
type CodeRepository interface {
	FindValidCode(ctx context.Context, code string) (domain.RewardCode, error)
	ClaimAndCountScans(ctx context.Context, codeID, userID uint, code, sku string) (int64, error)
}

// ProductRepository contract interface
type ProductRepository interface {
	FindBySKU(ctx context.Context, sku string) (domain.Product, error)
}

// SnapshotBuilder contract interface
type SnapshotBuilder interface {
	BuildEventContext(ctx context.Context, userID uint, productID *uint, meta domain.EventMeta) (domain.EventContext, error)
}

// Service owns the reward code lifecycle (unused -> used, one way) and turns
// a successful claim into the scan event cascade.
type Service struct {
	codeRepo      CodeRepository
	productRepo   ProductRepository
	builder       SnapshotBuilder
	bus           *eventbus.Bus
	claimTokenKey string
}

func NewService(
	codeRepo CodeRepository,
	productRepo ProductRepository,
	builder SnapshotBuilder,
	bus *eventbus.Bus,
	claimTokenKey string,
) *Service {
	return &Service{
		codeRepo:      codeRepo,
		productRepo:   productRepo,
		builder:       builder,
		bus:           bus,
		claimTokenKey: claimTokenKey,
	}
}

// ScanResult is what the scan command returns to its caller.
type ScanResult struct {
	Code        string `json:"code"`
	SKU         string `json:"sku"`
	IsFirstScan bool   `json:"is_first_scan"`
	TotalScans  int64  `json:"total_scans"`
}

// ProcessScan claims the code for the user and publishes the appropriate
// scan event. First versus standard is decided by the scan count including
// the scan just logged.
func (s *Service) ProcessScan(ctx context.Context, userID uint, code string, meta domain.EventMeta) (ScanResult, error) {
	rc, err := s.codeRepo.FindValidCode(ctx, code)
	if err != nil {
		return ScanResult{}, err
	}

	totalScans, err := s.codeRepo.ClaimAndCountScans(ctx, rc.ID, userID, rc.Code, rc.SKU)
	if err != nil {
		return ScanResult{}, err
	}

	var productID *uint
	if product, err := s.productRepo.FindBySKU(ctx, rc.SKU); err == nil {
		productID = &product.ID
	}

	ec, err := s.builder.BuildEventContext(ctx, userID, productID, meta)
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan snapshot: %w", err)
	}

	isFirst := totalScans == 1

	topic := domain.EventStandardProductScanned
	kind := "standard"
	if isFirst {
		topic = domain.EventFirstProductScanned
		kind = "first"
	}

	metrics.CodesClaimedTotal.WithLabelValues(kind).Inc()

	logger.Info("reward code claimed",
		"user_id", userID,
		"sku", rc.SKU,
		"total_scans", totalScans,
		"first_scan", isFirst,
	)

	s.bus.Dispatch(ctx, topic, domain.ScanEvent{
		UserID:  userID,
		Code:    rc.Code,
		SKU:     rc.SKU,
		Context: ec,
	})

	return ScanResult{
		Code:        rc.Code,
		SKU:         rc.SKU,
		IsFirstScan: isFirst,
		TotalScans:  totalScans,
	}, nil
}

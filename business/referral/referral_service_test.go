package referral

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
)

type fakeReferralRepo struct {
	mu        sync.Mutex
	byUser    map[uint]domain.Referral
	nextID    uint
	converted map[uint]bool
}

func newFakeReferralRepo() *fakeReferralRepo {
	return &fakeReferralRepo{
		byUser:    make(map[uint]domain.Referral),
		nextID:    1,
		converted: make(map[uint]bool),
	}
}

func (f *fakeReferralRepo) Create(ctx context.Context, r domain.Referral) (domain.Referral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byUser[r.ReferredUserID]; exists {
		return domain.Referral{}, domain.ErrConflict
	}
	r.ID = f.nextID
	f.nextID++
	f.byUser[r.ReferredUserID] = r
	return r, nil
}

func (f *fakeReferralRepo) FindByReferredUser(ctx context.Context, referredUserID uint) (domain.Referral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byUser[referredUserID]
	if !ok {
		return domain.Referral{}, domain.ErrNotFound
	}
	if f.converted[r.ID] {
		now := time.Now()
		r.ConvertedAt = &now
	}
	return r, nil
}

func (f *fakeReferralRepo) MarkConverted(ctx context.Context, referralID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.converted[referralID] {
		return false, nil
	}
	f.converted[referralID] = true
	return true, nil
}

type fakeUserRepo struct {
	byCode map[string]domain.User
}

func (f *fakeUserRepo) FindByReferralCode(ctx context.Context, code string) (domain.User, error) {
	u, ok := f.byCode[code]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type fakeGranter struct {
	mu     sync.Mutex
	grants []grantCall
}

type grantCall struct {
	userID uint
	base   int64
	desc   string
}

func (f *fakeGranter) Grant(ctx context.Context, userID uint, basePoints int64, description string, tempMultiplier float64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, grantCall{userID: userID, base: basePoints, desc: description})
	return basePoints, basePoints, nil
}

type fakeActionLog struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeActionLog) Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, fmt.Sprintf("%d:%s:%s", userID, actionType, objectID))
	return nil
}

func newTestService() (*Service, *fakeReferralRepo, *fakeUserRepo, *fakeGranter, *fakeActionLog, *eventbus.Bus) {
	referrals := newFakeReferralRepo()
	users := &fakeUserRepo{byCode: map[string]domain.User{
		"FRIEND-7": {ID: 7, ReferralCode: "FRIEND-7"},
	}}
	granter := &fakeGranter{}
	audit := &fakeActionLog{}
	bus := eventbus.New()
	svc := NewService(referrals, users, granter, audit, bus, 200)
	return svc, referrals, users, granter, audit, bus
}

func TestLinkCreatesPendingReferral(t *testing.T) {
	svc, referrals, _, _, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.Link(ctx, 42, "FRIEND-7"); err != nil {
		t.Fatalf("link: %v", err)
	}

	r, err := referrals.FindByReferredUser(ctx, 42)
	if err != nil {
		t.Fatalf("expected referral row, got %v", err)
	}
	if r.ReferrerUserID != 7 {
		t.Fatalf("expected referrer 7, got %d", r.ReferrerUserID)
	}
	if r.ConvertedAt != nil {
		t.Fatal("new referral must be pending, not converted")
	}
}

func TestLinkUnknownCodeIsNotAnError(t *testing.T) {
	svc, referrals, _, _, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.Link(ctx, 42, "NO-SUCH-CODE"); err != nil {
		t.Fatalf("unknown code must not fail registration, got %v", err)
	}
	if _, err := referrals.FindByReferredUser(ctx, 42); err == nil {
		t.Fatal("no referral row should exist for an unknown code")
	}
}

func TestLinkRejectsSelfReferral(t *testing.T) {
	svc, referrals, _, _, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.Link(ctx, 7, "FRIEND-7"); err != nil {
		t.Fatalf("self referral must be silently dropped, got %v", err)
	}
	if _, err := referrals.FindByReferredUser(ctx, 7); err == nil {
		t.Fatal("self referral must not create a row")
	}
}

func TestConvertPaysReferrerOnce(t *testing.T) {
	svc, _, _, granter, audit, bus := newTestService()
	ctx := context.Background()

	var published []domain.ReferralConvertedEvent
	bus.Listen(domain.EventReferralConverted, func(ctx context.Context, payload any) error {
		published = append(published, payload.(domain.ReferralConvertedEvent))
		return nil
	})

	if err := svc.Link(ctx, 42, "FRIEND-7"); err != nil {
		t.Fatalf("link: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.Convert(ctx, 42); err != nil {
			t.Fatalf("convert call %d: %v", i, err)
		}
	}

	if len(granter.grants) != 1 {
		t.Fatalf("expected exactly one bonus grant, got %d", len(granter.grants))
	}
	g := granter.grants[0]
	if g.userID != 7 || g.base != 200 || g.desc != "Referral Bonus" {
		t.Fatalf("unexpected grant %+v", g)
	}

	if len(published) != 1 {
		t.Fatalf("expected exactly one referral_converted event, got %d", len(published))
	}
	if published[0].ReferrerUserID != 7 || published[0].ReferredUserID != 42 {
		t.Fatalf("unexpected event payload %+v", published[0])
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit row, got %d", len(audit.entries))
	}
}

func TestConvertNoReferralIsNoOp(t *testing.T) {
	svc, _, _, granter, _, _ := newTestService()

	if err := svc.Convert(context.Background(), 9999); err != nil {
		t.Fatalf("convert without referral must be a no-op, got %v", err)
	}
	if len(granter.grants) != 0 {
		t.Fatal("no grant expected for users without a referral")
	}
}

func TestConvertConcurrentCallsPayExactlyOnce(t *testing.T) {
	svc, _, _, granter, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.Link(ctx, 42, "FRIEND-7"); err != nil {
		t.Fatalf("link: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Convert(ctx, 42)
		}()
	}
	wg.Wait()

	if len(granter.grants) != 1 {
		t.Fatalf("expected exactly one grant under concurrency, got %d", len(granter.grants))
	}
}

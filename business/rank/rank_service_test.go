package rank

import (
	"context"
	"testing"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/eventbus"
)

type fakeRankRepo struct {
	ranks []domain.Rank
}

func (f *fakeRankRepo) FindAll(ctx context.Context) ([]domain.Rank, error) {
	return f.ranks, nil
}

func (f *fakeRankRepo) FindByKey(ctx context.Context, key string) (domain.Rank, error) {
	for _, r := range f.ranks {
		if r.Key == key {
			return r, nil
		}
	}
	return domain.Rank{}, domain.ErrNotFound
}

type fakeUserRepo struct {
	users map[uint]*domain.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUserRepo) UpdateRankKey(ctx context.Context, userID uint, rankKey string) error {
	u, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.CurrentRankKey = rankKey
	return nil
}

type fakeBuilder struct{}

func (fakeBuilder) BuildEventContext(ctx context.Context, userID uint, productID *uint, meta domain.EventMeta) (domain.EventContext, error) {
	return domain.EventContext{
		UserSnapshot: domain.UserSnapshot{
			Identity: domain.IdentitySnapshot{UserID: userID},
		},
	}, nil
}

func testRanks() []domain.Rank {
	// deliberately unsorted
	return []domain.Rank{
		{Key: "gold", Name: "Gold", PointsRequired: 2000, PointMultiplier: 2.0},
		{Key: "member", Name: "Member", PointsRequired: 0, PointMultiplier: 1.0},
		{Key: "silver", Name: "Silver", PointsRequired: 500, PointMultiplier: 1.5},
	}
}

func newTestService(users map[uint]*domain.User) (*Service, *eventbus.Bus) {
	bus := eventbus.New()
	svc := NewService(&fakeRankRepo{ranks: testRanks()}, &fakeUserRepo{users: users}, fakeBuilder{}, bus)
	return svc, bus
}

func TestResolveHighestQualifyingRankWins(t *testing.T) {
	svc, _ := newTestService(nil)

	cases := []struct {
		lifetime int64
		wantKey  string
	}{
		{0, "member"},
		{499, "member"},
		{500, "silver"},
		{1999, "silver"},
		{2000, "gold"},
		{1_000_000, "gold"},
	}

	for _, tc := range cases {
		rank, err := svc.Resolve(context.Background(), tc.lifetime)
		if err != nil {
			t.Fatal(err)
		}
		if rank.Key != tc.wantKey {
			t.Fatalf("Resolve(%d)=%s, want %s", tc.lifetime, rank.Key, tc.wantKey)
		}
	}
}

func TestResolveIsMonotonic(t *testing.T) {
	svc, _ := newTestService(nil)

	var prev int64 = -1
	for _, pts := range []int64{0, 100, 499, 500, 501, 1999, 2000, 5000} {
		rank, err := svc.Resolve(context.Background(), pts)
		if err != nil {
			t.Fatal(err)
		}
		if rank.PointsRequired < prev {
			t.Fatalf("resolve not monotonic at %d points", pts)
		}
		prev = rank.PointsRequired
	}
}

func TestRecalculatePublishesOnTransition(t *testing.T) {
	users := map[uint]*domain.User{
		1: {ID: 1, LifetimePoints: 600, CurrentRankKey: "member"},
	}
	svc, bus := newTestService(users)

	var events []domain.RankChangedEvent
	bus.Listen(domain.EventUserRankChanged, func(ctx context.Context, payload any) error {
		events = append(events, payload.(domain.RankChangedEvent))
		return nil
	})

	if err := svc.RecalculateAndPersist(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	if users[1].CurrentRankKey != "silver" {
		t.Fatalf("rank key=%s, want silver", users[1].CurrentRankKey)
	}
	if len(events) != 1 {
		t.Fatalf("want one user_rank_changed event, got %d", len(events))
	}
	if events[0].OldRankKey != "member" || events[0].NewRankKey != "silver" {
		t.Fatalf("bad transition event: %+v", events[0])
	}
}

func TestRecalculateNoopWithoutTransition(t *testing.T) {
	users := map[uint]*domain.User{
		1: {ID: 1, LifetimePoints: 600, CurrentRankKey: "silver"},
	}
	svc, bus := newTestService(users)

	var fired bool
	bus.Listen(domain.EventUserRankChanged, func(ctx context.Context, payload any) error {
		fired = true
		return nil
	})

	if err := svc.RecalculateAndPersist(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Fatal("published user_rank_changed without a transition")
	}
}

func TestSatisfiesComparesByThresholdPosition(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	ok, err := svc.Satisfies(ctx, "gold", "silver")
	if err != nil || !ok {
		t.Fatalf("gold should satisfy silver requirement: ok=%v err=%v", ok, err)
	}

	ok, err = svc.Satisfies(ctx, "member", "silver")
	if err != nil || ok {
		t.Fatalf("member must not satisfy silver requirement: ok=%v err=%v", ok, err)
	}

	ok, err = svc.Satisfies(ctx, "member", "")
	if err != nil || !ok {
		t.Fatal("empty requirement must always pass")
	}
}

package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
)

type fakeUserRepo struct {
	users map[uint]domain.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type fakeActionLog struct {
	counts map[string]int64
}

func (f *fakeActionLog) CountByType(ctx context.Context, userID uint, actionType string) (int64, error) {
	return f.counts[actionType], nil
}

type fakeProductRepo struct {
	products map[uint]domain.Product
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

type fakeRankRepo struct {
	ranks map[string]domain.Rank
}

func (f *fakeRankRepo) FindByKey(ctx context.Context, key string) (domain.Rank, error) {
	r, ok := f.ranks[key]
	if !ok {
		return domain.Rank{}, domain.ErrNotFound
	}
	return r, nil
}

func newTestBuilder() *Builder {
	users := &fakeUserRepo{users: map[uint]domain.User{
		7: {
			ID:             7,
			FullName:       "Ayu Lestari",
			Email:          "ayu@example.com",
			PointsBalance:  350,
			LifetimePoints: 1200,
			CurrentRankKey: "silver",
		},
	}}
	logs := &fakeActionLog{counts: map[string]int64{domain.ActionTypeScan: 4}}
	products := &fakeProductRepo{products: map[uint]domain.Product{
		3: {ID: 3, SKU: "SKU-GLASS", ProductName: "Glass Jar", ProductCategory: "merch"},
	}}
	ranks := &fakeRankRepo{ranks: map[string]domain.Rank{
		"silver": {Key: "silver", Name: "Silver", PointsRequired: 500, PointMultiplier: 1.5},
	}}
	return NewBuilder(users, logs, products, ranks)
}

func TestBuildEventContext(t *testing.T) {
	b := newTestBuilder()

	ec, err := b.BuildEventContext(context.Background(), 7, nil, domain.EventMeta{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if ec.UserSnapshot.Identity.UserID != 7 || ec.UserSnapshot.Identity.Email != "ayu@example.com" {
		t.Fatalf("unexpected identity %+v", ec.UserSnapshot.Identity)
	}
	if ec.UserSnapshot.Economy.PointsBalance != 350 || ec.UserSnapshot.Economy.LifetimePoints != 1200 {
		t.Fatalf("unexpected economy %+v", ec.UserSnapshot.Economy)
	}
	if ec.UserSnapshot.Status.RankKey != "silver" || ec.UserSnapshot.Status.RankName != "Silver" {
		t.Fatalf("unexpected status %+v", ec.UserSnapshot.Status)
	}
	if ec.UserSnapshot.Engagement.TotalScans != 4 {
		t.Fatalf("expected 4 scans, got %d", ec.UserSnapshot.Engagement.TotalScans)
	}
	if ec.ProductSnapshot != nil {
		t.Fatal("no product snapshot expected without a product")
	}
	if ec.EventMeta.Time.IsZero() {
		t.Fatal("meta time must default to now")
	}
}

func TestBuildEventContextWithProduct(t *testing.T) {
	b := newTestBuilder()
	productID := uint(3)

	ec, err := b.BuildEventContext(context.Background(), 7, &productID, domain.EventMeta{Time: time.Now()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if ec.ProductSnapshot == nil {
		t.Fatal("expected a product snapshot")
	}
	if ec.ProductSnapshot.SKU != "SKU-GLASS" || ec.ProductSnapshot.Category != "merch" {
		t.Fatalf("unexpected product snapshot %+v", ec.ProductSnapshot)
	}
}

func TestBuildEventContextRankNameFallsBackToKey(t *testing.T) {
	b := newTestBuilder()
	b.rankRepo = &fakeRankRepo{ranks: map[string]domain.Rank{}}

	ec, err := b.BuildEventContext(context.Background(), 7, nil, domain.EventMeta{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if ec.UserSnapshot.Status.RankName != "silver" {
		t.Fatalf("expected rank name to fall back to key, got %q", ec.UserSnapshot.Status.RankName)
	}
}

func TestBuildEventContextUnknownUser(t *testing.T) {
	b := newTestBuilder()

	if _, err := b.BuildEventContext(context.Background(), 999, nil, domain.EventMeta{}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestToMapShape(t *testing.T) {
	b := newTestBuilder()

	ec, err := b.BuildEventContext(context.Background(), 7, nil, domain.EventMeta{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	m := ec.ToMap()
	userSnap, ok := m["user_snapshot"].(map[string]any)
	if !ok {
		t.Fatalf("expected user_snapshot map, got %T", m["user_snapshot"])
	}
	economy, ok := userSnap["economy"].(map[string]any)
	if !ok {
		t.Fatalf("expected economy map, got %T", userSnap["economy"])
	}
	if economy["points_balance"] != int64(350) {
		t.Fatalf("unexpected points_balance %v", economy["points_balance"])
	}
	engagement := userSnap["engagement"].(map[string]any)
	if engagement["total_scans"] != int64(4) {
		t.Fatalf("unexpected total_scans %v", engagement["total_scans"])
	}
}

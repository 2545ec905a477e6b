package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type fakeUserRepo struct {
	byID    map[uint]domain.User
	byEmail map[string]domain.User
	nextID  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uint]domain.User),
		byEmail: make(map[string]domain.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return domain.ErrConflict
	}
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = *u
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	old, ok := f.byID[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byEmail, old.Email)
	f.byID[u.ID] = *u
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byEmail, u.Email)
	delete(f.byID, id)
	return nil
}

type fakeLinker struct {
	linked []string
}

func (f *fakeLinker) Link(ctx context.Context, referredUserID uint, code string) error {
	f.linked = append(f.linked, code)
	return nil
}

func newTestService() (*userService, *fakeUserRepo, *fakeLinker) {
	repo := newFakeUserRepo()
	linker := &fakeLinker{}
	svc := NewUserService(repo, validator.New(), linker)
	return svc, repo, linker
}

func TestRegisterCreatesCustomerWithReferralCode(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{
		FullName: "Ayu Lestari",
		Email:    "ayu@example.com",
		Password: "secret123",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if created.Role != RoleCustomer {
		t.Fatalf("expected role %q, got %q", RoleCustomer, created.Role)
	}
	if !strings.HasPrefix(created.ReferralCode, "REF-") {
		t.Fatalf("expected generated referral code, got %q", created.ReferralCode)
	}
	if created.Password != "" {
		t.Fatal("password must not be returned")
	}
	if created.ReferredBy != nil {
		t.Fatal("referred_by must stay empty without a code")
	}
}

func TestRegisterLinksReferral(t *testing.T) {
	svc, _, linker := newTestService()

	created, err := svc.Register(context.Background(), &domain.User{
		FullName: "Budi Santoso",
		Email:    "budi@example.com",
		Password: "secret123",
	}, "REF-AAAA1111")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if created.ReferredBy == nil || *created.ReferredBy != "REF-AAAA1111" {
		t.Fatalf("expected referred_by recorded, got %v", created.ReferredBy)
	}
	if len(linker.linked) != 1 || linker.linked[0] != "REF-AAAA1111" {
		t.Fatalf("expected one referral link call, got %v", linker.linked)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.User{Email: "not-an-email", Password: "secret123"}, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}

	_, err = svc.Register(ctx, &domain.User{Email: "ok@example.com", Password: "short"}, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := &domain.User{FullName: "A", Email: "dup@example.com", Password: "secret123"}
	if _, err := svc.Register(ctx, first, ""); err != nil {
		t.Fatalf("first register: %v", err)
	}

	second := &domain.User{FullName: "B", Email: "dup@example.com", Password: "secret123"}
	if _, err := svc.Register(ctx, second, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	utils.InitJWT("test-secret")
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.User{
		FullName: "Citra Dewi",
		Email:    "citra@example.com",
		Password: "secret123",
	}, ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, logged, err := svc.Login(ctx, "citra@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if logged.Password != "" {
		t.Fatal("password must not be returned")
	}

	claims, err := utils.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != RoleCustomer {
		t.Fatalf("expected role claim %q, got %q", RoleCustomer, claims.Role)
	}

	if _, _, err := svc.Login(ctx, "citra@example.com", "wrongpass"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", "secret123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestUpdateUserCannotTouchEconomyFields(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, &domain.User{
		FullName: "Dian Putra",
		Email:    "dian@example.com",
		Password: "secret123",
	}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Simulate economy state accrued elsewhere.
	row := repo.byID[created.ID]
	row.PointsBalance = 500
	row.LifetimePoints = 1200
	row.CurrentRankKey = "silver"
	repo.byID[created.ID] = row
	repo.byEmail[row.Email] = row

	updated, err := svc.UpdateUser(ctx, created.ID, &domain.User{FullName: "Dian P."})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.FullName != "Dian P." {
		t.Fatalf("expected name updated, got %q", updated.FullName)
	}
	if updated.PointsBalance != 500 || updated.LifetimePoints != 1200 || updated.CurrentRankKey != "silver" {
		t.Fatalf("economy fields must survive a profile update, got %+v", updated)
	}
}

package achievement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/business/rules"
	"github.com/Anwarisbased/laravelCR-sub000/domain"

	"gorm.io/datatypes"
)

// ---- fakes ----

type fakeAchievementRepo struct {
	defs []domain.Achievement
}

func (f *fakeAchievementRepo) FindActiveByTriggerEvent(ctx context.Context, triggerEvent string) ([]domain.Achievement, error) {
	var out []domain.Achievement
	for _, d := range f.defs {
		if d.IsActive && d.TriggerEvent == triggerEvent {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) FindByKey(ctx context.Context, key string) (domain.Achievement, error) {
	for _, d := range f.defs {
		if d.Key == key {
			return d, nil
		}
	}
	return domain.Achievement{}, domain.ErrNotFound
}

type progressKey struct {
	userID uint
	key    string
}

type fakeProgressRepo struct {
	rows map[progressKey]*domain.UserAchievement
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[progressKey]*domain.UserAchievement)}
}

func (f *fakeProgressRepo) row(userID uint, key string) *domain.UserAchievement {
	k := progressKey{userID, key}
	r, ok := f.rows[k]
	if !ok {
		r = &domain.UserAchievement{UserID: userID, AchievementKey: key}
		f.rows[k] = r
	}
	return r
}

func (f *fakeProgressRepo) Get(ctx context.Context, userID uint, key string) (domain.UserAchievement, error) {
	r, ok := f.rows[progressKey{userID, key}]
	if !ok {
		return domain.UserAchievement{}, domain.ErrNotFound
	}
	return *r, nil
}

func (f *fakeProgressRepo) IncrementProgress(ctx context.Context, userID uint, key string, max int) (int, error) {
	r := f.row(userID, key)
	if r.TriggerCount < max {
		r.TriggerCount++
	}
	return r.TriggerCount, nil
}

func (f *fakeProgressRepo) Unlock(ctx context.Context, userID uint, key string) (bool, error) {
	r := f.row(userID, key)
	if r.UnlockedAt != nil {
		return false, nil
	}
	now := time.Now()
	r.UnlockedAt = &now
	return true, nil
}

func (f *fakeProgressRepo) MarkRewardGranted(ctx context.Context, userID uint, key string) (bool, error) {
	r := f.row(userID, key)
	if r.UnlockedAt == nil || r.RewardGrantedAt != nil {
		return false, nil
	}
	now := time.Now()
	r.RewardGrantedAt = &now
	return true, nil
}

func (f *fakeProgressRepo) ClearRewardGranted(ctx context.Context, userID uint, key string) error {
	f.row(userID, key).RewardGrantedAt = nil
	return nil
}

type fakeQueue struct {
	jobs []map[string]any
}

func (f *fakeQueue) Enqueue(ctx context.Context, jobName string, payload map[string]any) error {
	payload["job"] = jobName
	f.jobs = append(f.jobs, payload)
	return nil
}

type fakeGranter struct {
	grants   []int64
	failNext int
}

func (f *fakeGranter) Grant(ctx context.Context, userID uint, basePoints int64, description string, tempMultiplier float64) (int64, int64, error) {
	if f.failNext > 0 {
		f.failNext--
		return 0, 0, errors.New("ledger unavailable")
	}
	f.grants = append(f.grants, basePoints)
	return basePoints, basePoints, nil
}

type fakeActionLog struct {
	entries []string
}

func (f *fakeActionLog) Append(ctx context.Context, userID uint, actionType, objectID string, meta map[string]any) error {
	f.entries = append(f.entries, actionType+":"+objectID)
	return nil
}

type fakeNotifier struct {
	unlocked []string
	progress []int
}

func (f *fakeNotifier) AchievementUnlocked(ctx context.Context, userID uint, a domain.Achievement) error {
	f.unlocked = append(f.unlocked, a.Key)
	return nil
}

func (f *fakeNotifier) AchievementProgress(ctx context.Context, userID uint, a domain.Achievement, count int) error {
	f.progress = append(f.progress, count)
	return nil
}

// ---- helpers ----

func scanContext(totalScans int64) domain.EventContext {
	return domain.EventContext{
		UserSnapshot: domain.UserSnapshot{
			Identity:   domain.IdentitySnapshot{UserID: 1},
			Engagement: domain.EngagementSnapshot{TotalScans: totalScans},
			Status:     domain.StatusSnapshot{RankKey: "member"},
		},
		EventMeta: domain.EventMeta{Time: time.Now()},
	}
}

func newTestService(defs []domain.Achievement) (*Service, *fakeProgressRepo, *fakeQueue, *fakeGranter, *fakeNotifier) {
	progress := newFakeProgressRepo()
	queue := &fakeQueue{}
	granter := &fakeGranter{}
	notifier := &fakeNotifier{}
	svc := NewService(
		&fakeAchievementRepo{defs: defs},
		progress,
		rules.NewEngine(),
		queue,
		granter,
		&fakeActionLog{},
		notifier,
	)
	return svc, progress, queue, granter, notifier
}

// ---- tests ----

func TestThresholdUnlocksOnThirdQualifyingEvent(t *testing.T) {
	defs := []domain.Achievement{{
		Key:          "triple_scanner",
		Title:        "Triple Scanner",
		PointsReward: 50,
		TriggerEvent: domain.EventStandardProductScanned,
		TriggerCount: 3,
		IsActive:     true,
	}}
	svc, progress, queue, _, notifier := newTestService(defs)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := svc.EvaluateForEvent(ctx, 1, domain.EventStandardProductScanned, scanContext(int64(i))); err != nil {
			t.Fatal(err)
		}

		row := progress.row(1, "triple_scanner")
		if row.TriggerCount != i {
			t.Fatalf("after event %d: counter=%d", i, row.TriggerCount)
		}
		if i < 3 && row.UnlockedAt != nil {
			t.Fatalf("unlocked early at event %d", i)
		}
	}

	row := progress.row(1, "triple_scanner")
	if row.UnlockedAt == nil {
		t.Fatal("not unlocked after third event")
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("want one queued reward job, got %d", len(queue.jobs))
	}
	if len(notifier.unlocked) != 1 {
		t.Fatalf("want one unlock notification, got %d", len(notifier.unlocked))
	}
	// "one away" ping at count == 2
	if len(notifier.progress) != 1 || notifier.progress[0] != 2 {
		t.Fatalf("want one progress notification at 2, got %v", notifier.progress)
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	defs := []domain.Achievement{{
		Key:          "first_scan",
		Title:        "First Scan",
		PointsReward: 10,
		TriggerEvent: domain.EventFirstProductScanned,
		TriggerCount: 1,
		IsActive:     true,
	}}
	svc, progress, queue, _, _ := newTestService(defs)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := svc.EvaluateForEvent(ctx, 1, domain.EventFirstProductScanned, scanContext(1)); err != nil {
			t.Fatal(err)
		}
	}

	row := progress.row(1, "first_scan")
	if row.TriggerCount != 1 {
		t.Fatalf("counter ran past threshold: %d", row.TriggerCount)
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("reward enqueued %d times, want once", len(queue.jobs))
	}
}

func TestConditionsGateProgress(t *testing.T) {
	conds := condJSON(`[{"field":"user_snapshot.engagement.total_scans","operator":">","value":5}]`)
	defs := []domain.Achievement{{
		Key:          "power_scanner",
		Title:        "Power Scanner",
		TriggerEvent: domain.EventStandardProductScanned,
		TriggerCount: 1,
		Conditions:   conds,
		IsActive:     true,
	}}
	svc, progress, _, _, _ := newTestService(defs)
	ctx := context.Background()

	if err := svc.EvaluateForEvent(ctx, 1, domain.EventStandardProductScanned, scanContext(3)); err != nil {
		t.Fatal(err)
	}
	if progress.row(1, "power_scanner").TriggerCount != 0 {
		t.Fatal("progress advanced despite failing condition")
	}

	if err := svc.EvaluateForEvent(ctx, 1, domain.EventStandardProductScanned, scanContext(6)); err != nil {
		t.Fatal(err)
	}
	if progress.row(1, "power_scanner").UnlockedAt == nil {
		t.Fatal("did not unlock once condition passed")
	}
}

func TestInactiveAndOtherEventDefinitionsAreIgnored(t *testing.T) {
	defs := []domain.Achievement{
		{Key: "inactive", TriggerEvent: domain.EventStandardProductScanned, TriggerCount: 1, IsActive: false},
		{Key: "other", TriggerEvent: domain.EventUserRankChanged, TriggerCount: 1, IsActive: true},
	}
	svc, progress, _, _, _ := newTestService(defs)

	if err := svc.EvaluateForEvent(context.Background(), 1, domain.EventStandardProductScanned, scanContext(1)); err != nil {
		t.Fatal(err)
	}
	if len(progress.rows) != 0 {
		t.Fatalf("progress written for ineligible definitions: %v", progress.rows)
	}
}

func TestGrantQueuedRewardIsIdempotentUnderRedelivery(t *testing.T) {
	defs := []domain.Achievement{{
		Key:          "first_scan",
		Title:        "First Scan",
		PointsReward: 25,
		TriggerEvent: domain.EventFirstProductScanned,
		TriggerCount: 1,
		IsActive:     true,
	}}
	svc, progress, _, granter, _ := newTestService(defs)
	ctx := context.Background()

	if err := svc.EvaluateForEvent(ctx, 1, domain.EventFirstProductScanned, scanContext(1)); err != nil {
		t.Fatal(err)
	}
	if progress.row(1, "first_scan").UnlockedAt == nil {
		t.Fatal("not unlocked")
	}

	// the queue may deliver the same job more than once
	for i := 0; i < 3; i++ {
		if err := svc.GrantQueuedReward(ctx, 1, "first_scan"); err != nil {
			t.Fatal(err)
		}
	}

	if len(granter.grants) != 1 {
		t.Fatalf("reward granted %d times, want once", len(granter.grants))
	}
	if granter.grants[0] != 25 {
		t.Fatalf("granted %d points, want 25", granter.grants[0])
	}
}

func TestGrantQueuedRewardSurvivesTransientGrantFailure(t *testing.T) {
	defs := []domain.Achievement{{
		Key:          "first_scan",
		Title:        "First Scan",
		PointsReward: 25,
		TriggerEvent: domain.EventFirstProductScanned,
		TriggerCount: 1,
		IsActive:     true,
	}}
	svc, progress, _, granter, _ := newTestService(defs)
	ctx := context.Background()

	if err := svc.EvaluateForEvent(ctx, 1, domain.EventFirstProductScanned, scanContext(1)); err != nil {
		t.Fatal(err)
	}

	// first delivery: the ledger is down, the job must come back as an error
	granter.failNext = 1
	if err := svc.GrantQueuedReward(ctx, 1, "first_scan"); err == nil {
		t.Fatal("failed grant reported success, job would be acked")
	}
	if progress.row(1, "first_scan").RewardGrantedAt != nil {
		t.Fatal("reward flag still set after failed grant, redelivery would no-op")
	}

	// redelivery claims the flag again and pays out
	if err := svc.GrantQueuedReward(ctx, 1, "first_scan"); err != nil {
		t.Fatal(err)
	}
	if len(granter.grants) != 1 || granter.grants[0] != 25 {
		t.Fatalf("want one grant of 25 after redelivery, got %v", granter.grants)
	}

	// a third delivery is a plain duplicate and must not pay again
	if err := svc.GrantQueuedReward(ctx, 1, "first_scan"); err != nil {
		t.Fatal(err)
	}
	if len(granter.grants) != 1 {
		t.Fatalf("duplicate delivery paid again: %v", granter.grants)
	}
}

func condJSON(s string) datatypes.JSON {
	return datatypes.JSON([]byte(s))
}

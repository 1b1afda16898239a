package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alcyxob/fitplanhub/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubscribeRejectsActiveDuplicateUntilExpiry(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	trainer := e.addUser(t, "Sub Trainer", domain.RoleTrainer)
	user := e.addUser(t, "Sub User", domain.RoleUser)
	plan := e.addPlan(t, trainer, "Sub Plan", 30, 10)

	sub, err := e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if sub.Amount != 30 || sub.PaymentStatus != domain.PaymentCompleted {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if want := e.clock.Now().AddDate(0, 0, 10); !sub.EndDate.Equal(want) {
		t.Fatalf("endDate = %v, want %v", sub.EndDate, want)
	}

	_, err = e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID)
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("second Subscribe: expected ErrAlreadySubscribed, got %v", err)
	}
	requireKind(t, err, KindConflict)

	e.clock.Advance(11 * 24 * time.Hour)
	if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID); err != nil {
		t.Fatalf("Subscribe after expiry: %v", err)
	}

	if got := e.plan(t, plan.ID).SubscriberCount; got != 2 {
		t.Fatalf("subscriberCount = %d, want 2", got)
	}
	if got := e.notifications.forUser(trainer.ID, domain.NotificationSubscription); len(got) != 2 {
		t.Fatalf("trainer should be notified twice, got %d", len(got))
	}
}

func TestSubscribeUnknownOrInactivePlan(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	trainer := e.addUser(t, "Inactive Trainer", domain.RoleTrainer)
	user := e.addUser(t, "Inactive User", domain.RoleUser)
	plan := e.addPlan(t, trainer, "Retired Plan", 30, 10)

	if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, user.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	inactive := false
	if _, err := e.planSvc.Update(ctx, trainer.ID, plan.ID, PlanInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID); !errors.Is(err, ErrPlanNotAvailable) {
		t.Fatalf("expected ErrPlanNotAvailable, got %v", err)
	}
}

func TestListMySubscriptions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	trainer := e.addUser(t, "List Trainer", domain.RoleTrainer)
	user := e.addUser(t, "List User", domain.RoleUser)
	short := e.addPlan(t, trainer, "Short", 5, 1)
	long := e.addPlan(t, trainer, "Long", 5, 60)

	for _, p := range []domain.Plan{short, long} {
		if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, p.ID); err != nil {
			t.Fatalf("Subscribe %s: %v", p.Title, err)
		}
	}
	e.clock.Advance(2 * 24 * time.Hour)

	details, err := e.subscriptionSvc.ListMine(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(details))
	}
	for _, d := range details {
		if d.Plan == nil || d.Trainer == nil || d.Trainer.ID != trainer.ID {
			t.Fatalf("subscription must carry plan and trainer: %+v", d)
		}
		wantActive := d.Plan.ID == long.ID
		if d.IsActive != wantActive {
			t.Errorf("%s isActive = %v, want %v", d.Plan.Title, d.IsActive, wantActive)
		}
	}
}

// barrierSubscriptionRepo holds every HasActive caller until all of them have
// checked, so concurrent subscribers all see "no active subscription".
type barrierSubscriptionRepo struct {
	*fakeSubscriptionRepo
	checked sync.WaitGroup
}

func (r *barrierSubscriptionRepo) HasActive(ctx context.Context, userID, planID primitive.ObjectID, now time.Time) (bool, error) {
	active, err := r.fakeSubscriptionRepo.HasActive(ctx, userID, planID, now)
	r.checked.Done()
	r.checked.Wait()
	return active, err
}

func TestConcurrentSubscribeCreatesOneSubscription(t *testing.T) {
	e := newTestEnv(t)
	trainer := e.addUser(t, "Race Trainer", domain.RoleTrainer)
	user := e.addUser(t, "Race User", domain.RoleUser)
	plan := e.addPlan(t, trainer, "Race Plan", 25, 30)

	const callers = 2
	repo := &barrierSubscriptionRepo{fakeSubscriptionRepo: e.subscriptions}
	repo.checked.Add(callers)
	svc := NewSubscriptionService(repo, e.plans, e.users, e.tx, e.notificationSvc).(*subscriptionService)
	svc.now = e.clock.Now

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Subscribe(context.Background(), user.ID, plan.ID)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, ErrAlreadySubscribed):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d subscribers succeeded, want 1 (errs=%v)", succeeded, errs)
	}
	if got := len(e.subscriptions.subs); got != 1 {
		t.Fatalf("stored %d subscriptions, want 1", got)
	}
	if got := e.plan(t, plan.ID).SubscriberCount; got != 1 {
		t.Fatalf("subscriberCount = %d, want 1", got)
	}
}

func TestSubscribeReleasesClaimWhenWriteFails(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	trainer := e.addUser(t, "Retry Trainer", domain.RoleTrainer)
	user := e.addUser(t, "Retry User", domain.RoleUser)
	plan := e.addPlan(t, trainer, "Retry Plan", 25, 30)

	e.subscriptions.createErr = errors.New("write conflict")
	_, err := e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID)
	requireKind(t, err, KindInternal)

	e.subscriptions.createErr = nil
	if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID); err != nil {
		t.Fatalf("Subscribe after a failed write: %v", err)
	}
	if got := e.plan(t, plan.ID).SubscriberCount; got != 1 {
		t.Fatalf("subscriberCount = %d, want 1", got)
	}
}

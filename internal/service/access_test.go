package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitplanhub/internal/domain"
)

func TestPlanAccessFollowsSubscriptionWindow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	trainer := e.addUser(t, "Tina Trainer", domain.RoleTrainer)
	user := e.addUser(t, "Uma User", domain.RoleUser)
	plan := e.addPlan(t, trainer, "Thirty Day Shred", 49.99, 30)

	view, err := e.planSvc.Get(ctx, user.ID, plan.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !view.IsPreview() {
		t.Fatal("unsubscribed user must see a preview")
	}

	if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, plan.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	e.clock.Advance(29 * 24 * time.Hour)
	view, err = e.planSvc.Get(ctx, user.ID, plan.ID)
	if err != nil {
		t.Fatalf("Get day 29: %v", err)
	}
	if view.IsPreview() {
		t.Fatal("subscriber must see the full plan on day 29")
	}

	// endDate itself is still inside the window
	e.clock.Advance(24 * time.Hour)
	if view, _ = e.planSvc.Get(ctx, user.ID, plan.ID); view.IsPreview() {
		t.Fatal("subscription must still be active at exactly endDate")
	}

	e.clock.Advance(24 * time.Hour)
	view, err = e.planSvc.Get(ctx, user.ID, plan.ID)
	if err != nil {
		t.Fatalf("Get day 31: %v", err)
	}
	if !view.IsPreview() {
		t.Fatal("expired subscription must fall back to a preview on day 31")
	}
}

func TestPlanAccessOwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner := e.addUser(t, "Owner Trainer", domain.RoleTrainer)
	other := e.addUser(t, "Other Trainer", domain.RoleTrainer)
	plan := e.addPlan(t, owner, "Owner Plan", 10, 7)

	ownerView, err := e.planSvc.Get(ctx, owner.ID, plan.ID)
	if err != nil {
		t.Fatalf("Get as owner: %v", err)
	}
	if ownerView.IsPreview() {
		t.Fatal("owner must see the full plan")
	}

	otherView, err := e.planSvc.Get(ctx, other.ID, plan.ID)
	if err != nil {
		t.Fatalf("Get as other trainer: %v", err)
	}
	if !otherView.IsPreview() {
		t.Fatal("a trainer who does not own the plan must see a preview")
	}
	if otherView.Trainer == nil || otherView.Trainer.ID != owner.ID || otherView.Trainer.PasswordHash != "" {
		t.Fatalf("preview must carry the sanitized trainer, got %+v", otherView.Trainer)
	}
}

func TestResolveBatchesMixedAccess(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	trainer := e.addUser(t, "Batch Trainer", domain.RoleTrainer)
	user := e.addUser(t, "Batch User", domain.RoleUser)
	subscribed := e.addPlan(t, trainer, "Subscribed", 5, 10)
	e.addPlan(t, trainer, "Not Subscribed", 5, 10)

	if _, err := e.subscriptionSvc.Subscribe(ctx, user.ID, subscribed.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	views, err := e.planSvc.ListActive(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(views))
	}
	for _, v := range views {
		wantPreview := v.Plan.ID != subscribed.ID
		if v.IsPreview() != wantPreview {
			t.Errorf("plan %q preview = %v, want %v", v.Plan.Title, v.IsPreview(), wantPreview)
		}
	}
}

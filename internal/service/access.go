package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanViewKind says how much of a plan a viewer may see.
type PlanViewKind int

const (
	ViewFull PlanViewKind = iota
	ViewPreview
)

// PlanView is a plan as rendered for one viewer. The api layer decides the
// JSON shape from Kind alone.
type PlanView struct {
	Kind    PlanViewKind
	Plan    domain.Plan
	Trainer *domain.User // nil when the trainer account no longer exists
}

func (v PlanView) IsPreview() bool { return v.Kind == ViewPreview }

// AccessPolicy decides full-versus-preview access to plans. A viewer has full
// access to a plan they own or hold an unexpired subscription for.
type AccessPolicy interface {
	Resolve(ctx context.Context, viewerID primitive.ObjectID, plans []domain.Plan) ([]PlanView, error)
	HasFullAccess(ctx context.Context, viewerID primitive.ObjectID, plan *domain.Plan) (bool, error)
}

type accessPolicy struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	now              func() time.Time
}

func NewAccessPolicy(subscriptionRepo repository.SubscriptionRepository, userRepo repository.UserRepository) AccessPolicy {
	return &accessPolicy{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		now:              time.Now,
	}
}

func (p *accessPolicy) HasFullAccess(ctx context.Context, viewerID primitive.ObjectID, plan *domain.Plan) (bool, error) {
	if plan.IsOwnedBy(viewerID) {
		return true, nil
	}
	ok, err := p.subscriptionRepo.HasActive(ctx, viewerID, plan.ID, p.now())
	if err != nil {
		return false, internalError(err)
	}
	return ok, nil
}

// Resolve renders plans for viewerID with one subscription query and one
// trainer query for the whole batch.
func (p *accessPolicy) Resolve(ctx context.Context, viewerID primitive.ObjectID, plans []domain.Plan) ([]PlanView, error) {
	views := make([]PlanView, len(plans))
	if len(plans) == 0 {
		return views, nil
	}

	var candidates []primitive.ObjectID
	trainerSet := make(map[primitive.ObjectID]struct{})
	for i := range plans {
		if !plans[i].IsOwnedBy(viewerID) {
			candidates = append(candidates, plans[i].ID)
		}
		trainerSet[plans[i].TrainerID] = struct{}{}
	}

	subscribed := make(map[primitive.ObjectID]bool)
	if len(candidates) > 0 {
		active, err := p.subscriptionRepo.ActivePlanIDs(ctx, viewerID, candidates, p.now())
		if err != nil {
			return nil, internalError(err)
		}
		for _, id := range active {
			subscribed[id] = true
		}
	}

	trainers, err := p.trainersByID(ctx, trainerSet)
	if err != nil {
		return nil, err
	}

	for i := range plans {
		kind := ViewPreview
		if plans[i].IsOwnedBy(viewerID) || subscribed[plans[i].ID] {
			kind = ViewFull
		}
		views[i] = PlanView{Kind: kind, Plan: plans[i]}
		if t, ok := trainers[plans[i].TrainerID]; ok {
			views[i].Trainer = &t
		}
	}
	return views, nil
}

func (p *accessPolicy) trainersByID(ctx context.Context, set map[primitive.ObjectID]struct{}) (map[primitive.ObjectID]domain.User, error) {
	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	users, err := p.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}
	byID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		u.PasswordHash = ""
		byID[u.ID] = u
	}
	return byID, nil
}

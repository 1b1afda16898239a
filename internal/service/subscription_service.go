package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionDetail is one of the caller's subscriptions with its plan and
// the plan's trainer. Plan is nil if the plan has since been deleted.
type SubscriptionDetail struct {
	Subscription domain.Subscription
	Plan         *domain.Plan
	Trainer      *domain.User
	IsActive     bool
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Subscription, error)
	ListMine(ctx context.Context, userID primitive.ObjectID) ([]SubscriptionDetail, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	planRepo         repository.PlanRepository
	userRepo         repository.UserRepository
	tx               repository.Transactor
	notifications    NotificationService
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	notifications NotificationService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		userRepo:         userRepo,
		tx:               tx,
		notifications:    notifications,
		now:              time.Now,
	}
}

// Subscribe grants userID access to planID for the plan's duration. Payment
// is recorded as completed immediately.
func (s *subscriptionService) Subscribe(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Subscription, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError(err)
	}
	if !plan.IsActive {
		return nil, ErrPlanNotAvailable
	}

	now := s.now().UTC()
	active, err := s.subscriptionRepo.HasActive(ctx, userID, planID, now)
	if err != nil {
		return nil, internalError(err)
	}
	if active {
		return nil, ErrAlreadySubscribed
	}

	endDate := domain.SubscriptionEnd(now, plan.Duration)
	// The claim runs outside the transaction: a refused claim is a duplicate
	// key error, which would abort a session transaction.
	claimed, err := s.subscriptionRepo.ClaimActive(ctx, userID, planID, now, endDate)
	if err != nil {
		return nil, internalError(err)
	}
	if !claimed {
		return nil, ErrAlreadySubscribed
	}

	sub := &domain.Subscription{
		UserID:        userID,
		PlanID:        planID,
		StartDate:     now,
		EndDate:       endDate,
		Amount:        plan.Price,
		PaymentStatus: domain.PaymentCompleted,
		CreatedAt:     now,
	}
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.subscriptionRepo.Create(ctx, sub); err != nil {
			return err
		}
		return s.planRepo.IncrementSubscribers(ctx, planID, 1)
	})
	if err != nil {
		if releaseErr := s.subscriptionRepo.ReleaseActive(ctx, userID, planID, endDate); releaseErr != nil {
			slog.ErrorContext(ctx, "failed to release subscription claim",
				"userId", userID.Hex(), "planId", planID.Hex(), "error", releaseErr)
		}
		return nil, internalError(err)
	}

	subscriberName := "Someone"
	if u, err := s.userRepo.GetByID(ctx, userID); err == nil {
		subscriberName = u.Name
	}
	s.notifications.Notify(ctx, domain.Notification{
		UserID:  plan.TrainerID,
		Type:    domain.NotificationSubscription,
		Title:   "New Subscriber",
		Message: fmt.Sprintf("%s subscribed to your plan: %s", subscriberName, plan.Title),
		Link:    "/plans/" + plan.ID.Hex(),
	})
	return sub, nil
}

func (s *subscriptionService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]SubscriptionDetail, error) {
	subs, err := s.subscriptionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	details := make([]SubscriptionDetail, len(subs))
	if len(subs) == 0 {
		return details, nil
	}

	planIDs := make([]primitive.ObjectID, len(subs))
	for i, sub := range subs {
		planIDs[i] = sub.PlanID
	}
	plans, err := s.planRepo.List(ctx, repository.PlanFilter{IDs: planIDs})
	if err != nil {
		return nil, internalError(err)
	}
	plansByID := make(map[primitive.ObjectID]domain.Plan, len(plans))
	trainerIDs := make([]primitive.ObjectID, 0, len(plans))
	for _, p := range plans {
		plansByID[p.ID] = p
		trainerIDs = append(trainerIDs, p.TrainerID)
	}

	trainersByID := map[primitive.ObjectID]domain.User{}
	if len(trainerIDs) > 0 {
		trainers, err := s.userRepo.GetByIDs(ctx, trainerIDs)
		if err != nil {
			return nil, internalError(err)
		}
		for _, t := range trainers {
			t.PasswordHash = ""
			trainersByID[t.ID] = t
		}
	}

	now := s.now()
	for i, sub := range subs {
		details[i] = SubscriptionDetail{Subscription: sub, IsActive: sub.IsActive(now)}
		if p, ok := plansByID[sub.PlanID]; ok {
			details[i].Plan = &p
			if t, ok := trainersByID[p.TrainerID]; ok {
				details[i].Trainer = &t
			}
		}
	}
	return details, nil
}

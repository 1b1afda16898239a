package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultFeedSize = 50

// TrainerDetail is a trainer's public profile and active plans as seen by the viewer.
type TrainerDetail struct {
	Trainer domain.User
	Plans   []PlanView
}

// Follower is an account following the trainer and when it started to.
type Follower struct {
	User       domain.User
	FollowedAt time.Time
}

// Subscriber is one active subscription on a trainer's plan.
type Subscriber struct {
	UserID    primitive.ObjectID
	Name      string
	Email     string
	Amount    float64
	StartDate time.Time
	EndDate   time.Time
}

// PlanSubscribers groups the active subscribers of one plan.
type PlanSubscribers struct {
	PlanTitle   string
	Subscribers []Subscriber
}

// SubscriberReport summarizes active subscriptions across a trainer's plans.
// ByPlan has an entry for every plan of the trainer.
type SubscriberReport struct {
	TotalSubscribers   int // distinct users
	TotalSubscriptions int
	ByPlan             map[primitive.ObjectID]*PlanSubscribers
}

type TrainerService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, viewerID, trainerID primitive.ObjectID) (*TrainerDetail, error)

	Follow(ctx context.Context, followerID, trainerID primitive.ObjectID) error
	// Unfollow succeeds even if followerID was not following trainerID.
	Unfollow(ctx context.Context, followerID, trainerID primitive.ObjectID) error
	Followed(ctx context.Context, userID primitive.ObjectID) ([]domain.User, error)
	Feed(ctx context.Context, userID primitive.ObjectID) ([]PlanView, error)

	MyFollowers(ctx context.Context, trainerID primitive.ObjectID) ([]Follower, error)
	MySubscribers(ctx context.Context, trainerID primitive.ObjectID) (*SubscriberReport, error)
}

type trainerService struct {
	userRepo         repository.UserRepository
	followRepo       repository.FollowRepository
	planRepo         repository.PlanRepository
	subscriptionRepo repository.SubscriptionRepository
	access           AccessPolicy
	notifications    NotificationService
	feedSize         int64
	now              func() time.Time
}

func NewTrainerService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	planRepo repository.PlanRepository,
	subscriptionRepo repository.SubscriptionRepository,
	access AccessPolicy,
	notifications NotificationService,
	feedSize int64,
) TrainerService {
	if feedSize <= 0 {
		feedSize = defaultFeedSize
	}
	return &trainerService{
		userRepo:         userRepo,
		followRepo:       followRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		access:           access,
		notifications:    notifications,
		feedSize:         feedSize,
		now:              time.Now,
	}
}

func stripPasswords(users []domain.User) []domain.User {
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users
}

func (s *trainerService) List(ctx context.Context) ([]domain.User, error) {
	trainers, err := s.userRepo.ListByRole(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, internalError(err)
	}
	return stripPasswords(trainers), nil
}

// trainer loads trainerID and reports ErrTrainerNotFound for missing or non-trainer accounts.
func (s *trainerService) trainer(ctx context.Context, trainerID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, internalError(err)
	}
	if !user.IsTrainer() {
		return nil, ErrTrainerNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *trainerService) Get(ctx context.Context, viewerID, trainerID primitive.ObjectID) (*TrainerDetail, error) {
	trainer, err := s.trainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	plans, err := s.planRepo.List(ctx, repository.PlanFilter{
		TrainerIDs:       []primitive.ObjectID{trainerID},
		RestrictTrainers: true,
		ActiveOnly:       true,
		Sort:             repository.SortNewest,
	})
	if err != nil {
		return nil, internalError(err)
	}
	views, err := s.access.Resolve(ctx, viewerID, plans)
	if err != nil {
		return nil, err
	}
	return &TrainerDetail{Trainer: *trainer, Plans: views}, nil
}

func (s *trainerService) Follow(ctx context.Context, followerID, trainerID primitive.ObjectID) error {
	if followerID == trainerID {
		return ErrCannotFollowSelf
	}
	if _, err := s.trainer(ctx, trainerID); err != nil {
		return err
	}

	err := s.followRepo.Create(ctx, &domain.Follow{
		FollowerID: followerID,
		TrainerID:  trainerID,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyFollowing
		}
		return internalError(err)
	}

	followerName := "Someone"
	if u, err := s.userRepo.GetByID(ctx, followerID); err == nil {
		followerName = u.Name
	}
	s.notifications.Notify(ctx, domain.Notification{
		UserID:  trainerID,
		Type:    domain.NotificationNewFollower,
		Title:   "New Follower",
		Message: fmt.Sprintf("%s started following you", followerName),
		Link:    "/trainers/" + trainerID.Hex(),
	})
	return nil
}

func (s *trainerService) Unfollow(ctx context.Context, followerID, trainerID primitive.ObjectID) error {
	err := s.followRepo.Delete(ctx, followerID, trainerID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return internalError(err)
	}
	return nil
}

func (s *trainerService) Followed(ctx context.Context, userID primitive.ObjectID) ([]domain.User, error) {
	ids, err := s.followRepo.TrainerIDsFollowedBy(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	trainers, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}
	return stripPasswords(trainers), nil
}

// Feed returns the newest active plans of every followed trainer, capped at the feed size.
func (s *trainerService) Feed(ctx context.Context, userID primitive.ObjectID) ([]PlanView, error) {
	ids, err := s.followRepo.TrainerIDsFollowedBy(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	plans, err := s.planRepo.List(ctx, repository.PlanFilter{
		TrainerIDs:       ids,
		RestrictTrainers: true,
		ActiveOnly:       true,
		Sort:             repository.SortNewest,
		Limit:            s.feedSize,
	})
	if err != nil {
		return nil, internalError(err)
	}
	return s.access.Resolve(ctx, userID, plans)
}

func (s *trainerService) MyFollowers(ctx context.Context, trainerID primitive.ObjectID) ([]Follower, error) {
	follows, err := s.followRepo.FollowersOf(ctx, trainerID)
	if err != nil {
		return nil, internalError(err)
	}
	followers := []Follower{}
	if len(follows) == 0 {
		return followers, nil
	}

	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		ids[i] = f.FollowerID
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}
	byID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range stripPasswords(users) {
		byID[u.ID] = u
	}

	// keep the newest-first order of the follows
	for _, f := range follows {
		if u, ok := byID[f.FollowerID]; ok {
			followers = append(followers, Follower{User: u, FollowedAt: f.CreatedAt})
		}
	}
	return followers, nil
}

func (s *trainerService) MySubscribers(ctx context.Context, trainerID primitive.ObjectID) (*SubscriberReport, error) {
	plans, err := s.planRepo.List(ctx, repository.PlanFilter{
		TrainerIDs:       []primitive.ObjectID{trainerID},
		RestrictTrainers: true,
		Sort:             repository.SortNewest,
	})
	if err != nil {
		return nil, internalError(err)
	}

	report := &SubscriberReport{ByPlan: make(map[primitive.ObjectID]*PlanSubscribers, len(plans))}
	if len(plans) == 0 {
		return report, nil
	}
	planIDs := make([]primitive.ObjectID, len(plans))
	for i, p := range plans {
		planIDs[i] = p.ID
		report.ByPlan[p.ID] = &PlanSubscribers{PlanTitle: p.Title, Subscribers: []Subscriber{}}
	}

	subs, err := s.subscriptionRepo.ListActiveByPlans(ctx, planIDs, s.now().UTC())
	if err != nil {
		return nil, internalError(err)
	}
	if len(subs) == 0 {
		return report, nil
	}

	userSet := make(map[primitive.ObjectID]struct{})
	for _, sub := range subs {
		userSet[sub.UserID] = struct{}{}
	}
	userIDs := make([]primitive.ObjectID, 0, len(userSet))
	for id := range userSet {
		userIDs = append(userIDs, id)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, internalError(err)
	}
	usersByID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	for _, sub := range subs {
		group, ok := report.ByPlan[sub.PlanID]
		if !ok {
			continue
		}
		u := usersByID[sub.UserID]
		group.Subscribers = append(group.Subscribers, Subscriber{
			UserID:    sub.UserID,
			Name:      u.Name,
			Email:     u.Email,
			Amount:    sub.Amount,
			StartDate: sub.StartDate,
			EndDate:   sub.EndDate,
		})
		report.TotalSubscriptions++
	}
	report.TotalSubscribers = len(userSet)
	return report, nil
}

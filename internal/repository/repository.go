package repository

import (
	"alcyxob/fitplanhub/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn as one unit of work. Implementations may run fn inside a
// database transaction; fn must use the ctx it is given.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with account data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// FollowRepository stores the (follower, trainer) relation.
type FollowRepository interface {
	// Create returns ErrDuplicate if the follower already follows the trainer.
	Create(ctx context.Context, follow *domain.Follow) error
	// Delete returns ErrNotFound if the relation does not exist.
	Delete(ctx context.Context, followerID, trainerID primitive.ObjectID) error
	TrainerIDsFollowedBy(ctx context.Context, followerID primitive.ObjectID) ([]primitive.ObjectID, error)
	// FollowersOf returns follows for a trainer, newest first.
	FollowersOf(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Follow, error)
}

// PlanSort selects the ordering of a plan listing.
type PlanSort string

const (
	SortNewest    PlanSort = "newest"
	SortPriceLow  PlanSort = "price_low"
	SortPriceHigh PlanSort = "price_high"
	SortRating    PlanSort = "rating"
	SortPopular   PlanSort = "popular"
)

// PlanFilter narrows a plan listing. Zero values mean "no constraint".
type PlanFilter struct {
	IDs        []primitive.ObjectID
	TrainerIDs []primitive.ObjectID
	// RestrictTrainers makes an empty TrainerIDs match nothing instead of everything.
	RestrictTrainers bool
	ActiveOnly       bool
	Keyword          string
	Category         domain.PlanCategory
	Difficulty       domain.Difficulty
	MinPrice         *float64
	MaxPrice         *float64
	MinRating        *float64
	Sort             PlanSort
	Limit            int64
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]domain.Plan, error)
	// Update writes the editable fields of plan. Aggregates are never touched.
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, planID, trainerID primitive.ObjectID) error
	// ApplyRatingDelta atomically adds to ratingSum/reviewCount and recomputes averageRating.
	ApplyRatingDelta(ctx context.Context, planID primitive.ObjectID, sumDelta, countDelta int) error
	IncrementSubscribers(ctx context.Context, planID primitive.ObjectID, delta int) error
	// SetAggregates overwrites the denormalized fields with recomputed values.
	SetAggregates(ctx context.Context, planID primitive.ObjectID, ratingSum, reviewCount, subscriberCount int) error
	SetExerciseVideoKey(ctx context.Context, planID primitive.ObjectID, index int, key string) error
}

// SubscriptionRepository defines the interface for interacting with subscription data.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	HasActive(ctx context.Context, userID, planID primitive.ObjectID, now time.Time) (bool, error)
	// ClaimActive atomically reserves the (user, plan) pair until the given
	// time. It reports false while an earlier claim is still live.
	ClaimActive(ctx context.Context, userID, planID primitive.ObjectID, now, until time.Time) (bool, error)
	// ReleaseActive undoes a claim whose subscription could not be stored.
	ReleaseActive(ctx context.Context, userID, planID primitive.ObjectID, until time.Time) error
	// ActivePlanIDs returns the subset of planIDs the user holds an active subscription for.
	ActivePlanIDs(ctx context.Context, userID primitive.ObjectID, planIDs []primitive.ObjectID, now time.Time) ([]primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error)
	ListActiveByPlans(ctx context.Context, planIDs []primitive.ObjectID, now time.Time) ([]domain.Subscription, error)
	CountByPlan(ctx context.Context, planID primitive.ObjectID) (int, error)
}

// ReviewRepository defines the interface for interacting with review data.
type ReviewRepository interface {
	// Create returns ErrDuplicate if the user already reviewed the plan.
	Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.Review, error)
	// RatingTotals recomputes sum and count of ratings for a plan from the reviews themselves.
	RatingTotals(ctx context.Context, planID primitive.ObjectID) (sum int, count int, err error)
}

// WorkoutLogFilter narrows a workout log listing.
type WorkoutLogFilter struct {
	UserID primitive.ObjectID
	PlanID *primitive.ObjectID
	From   *time.Time
	To     *time.Time
}

// WorkoutLogRepository defines the interface for interacting with workout logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	List(ctx context.Context, filter WorkoutLogFilter) ([]domain.WorkoutLog, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	// CountSince counts the user's logs dated at or after since. A zero since counts all logs.
	CountSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int, error)
	Stats(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.WorkoutStats, error)
}

// NotificationRepository defines the interface for interacting with notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, ns []domain.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// AchievementRepository defines the interface for interacting with achievements.
type AchievementRepository interface {
	// AwardOnce inserts the achievement unless the user already holds one of
	// the same type. It reports whether a new achievement was created. Call it
	// outside session transactions, where a lost award race aborts the session.
	AwardOnce(ctx context.Context, a *domain.Achievement) (bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error)
}

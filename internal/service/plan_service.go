package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"alcyxob/fitplanhub/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanInput carries the editable fields of a plan. On update, zero values
// (nil for pointers and slices) keep the stored value.
type PlanInput struct {
	Title       string
	Description string
	Price       *float64
	Duration    int
	Category    domain.PlanCategory
	Difficulty  domain.Difficulty
	Exercises   []domain.PlanExercise
	Tags        []string
	IsActive    *bool
}

// SearchQuery holds the optional filters of a plan search.
type SearchQuery struct {
	Keyword    string
	Category   domain.PlanCategory
	Difficulty domain.Difficulty
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
	Sort       repository.PlanSort
}

// VideoUpload is a presigned PUT target for an exercise video.
type VideoUpload struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

type PlanService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, in PlanInput) (*domain.Plan, error)
	Update(ctx context.Context, trainerID, planID primitive.ObjectID, in PlanInput) (*domain.Plan, error)
	Delete(ctx context.Context, trainerID, planID primitive.ObjectID) error

	Get(ctx context.Context, viewerID, planID primitive.ObjectID) (*PlanView, error)
	ListActive(ctx context.Context, viewerID primitive.ObjectID) ([]PlanView, error)
	Search(ctx context.Context, viewerID primitive.ObjectID, q SearchQuery) ([]PlanView, error)
	ListMine(ctx context.Context, trainerID primitive.ObjectID) ([]PlanView, error)

	// RecalculateAggregates rebuilds the denormalized counters of a plan from
	// the reviews and subscriptions collections.
	RecalculateAggregates(ctx context.Context, planID primitive.ObjectID) error

	CreateVideoUploadURL(ctx context.Context, trainerID, planID primitive.ObjectID, index int, contentType string) (*VideoUpload, error)
	GetVideoURL(ctx context.Context, viewerID, planID primitive.ObjectID, index int) (string, error)
}

type planService struct {
	planRepo         repository.PlanRepository
	reviewRepo       repository.ReviewRepository
	subscriptionRepo repository.SubscriptionRepository
	followRepo       repository.FollowRepository
	userRepo         repository.UserRepository
	access           AccessPolicy
	notifications    NotificationService
	videos           storage.VideoStore // nil when object storage is not configured
	now              func() time.Time
}

func NewPlanService(
	planRepo repository.PlanRepository,
	reviewRepo repository.ReviewRepository,
	subscriptionRepo repository.SubscriptionRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	access AccessPolicy,
	notifications NotificationService,
	videos storage.VideoStore,
) PlanService {
	return &planService{
		planRepo:         planRepo,
		reviewRepo:       reviewRepo,
		subscriptionRepo: subscriptionRepo,
		followRepo:       followRepo,
		userRepo:         userRepo,
		access:           access,
		notifications:    notifications,
		videos:           videos,
		now:              time.Now,
	}
}

func validatePlan(p *domain.Plan) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return validationError("Plan title is required")
	case strings.TrimSpace(p.Description) == "":
		return validationError("Description is required")
	case p.Price < 0:
		return validationError("Price cannot be negative")
	case p.Duration < 1:
		return validationError("Duration must be at least 1 day")
	case !p.Category.Valid():
		return validationError("Invalid category %q", p.Category)
	case !p.Difficulty.Valid():
		return validationError("Invalid difficulty %q", p.Difficulty)
	}
	for i, ex := range p.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return validationError("Exercise %d requires a name", i+1)
		}
		if ex.Sets < 0 || ex.Reps < 0 {
			return validationError("Exercise %d: sets and reps cannot be negative", i+1)
		}
	}
	return nil
}

// Create stores a new plan for trainerID and tells the trainer's followers.
func (s *planService) Create(ctx context.Context, trainerID primitive.ObjectID, in PlanInput) (*domain.Plan, error) {
	if in.Price == nil {
		return nil, validationError("Price is required")
	}
	plan := &domain.Plan{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       *in.Price,
		Duration:    in.Duration,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		TrainerID:   trainerID,
		Exercises:   stripVideoKeys(in.Exercises),
		Tags:        in.Tags,
		IsActive:    true,
	}
	if plan.Category == "" {
		plan.Category = domain.CategoryGeneral
	}
	if plan.Difficulty == "" {
		plan.Difficulty = domain.DifficultyBeginner
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, internalError(err)
	}

	if plan.IsActive {
		s.notifyFollowers(ctx, plan)
	}
	return plan, nil
}

func stripVideoKeys(exercises []domain.PlanExercise) []domain.PlanExercise {
	out := make([]domain.PlanExercise, len(exercises))
	for i, ex := range exercises {
		ex.VideoKey = ""
		out[i] = ex
	}
	return out
}

func (s *planService) notifyFollowers(ctx context.Context, plan *domain.Plan) {
	follows, err := s.followRepo.FollowersOf(ctx, plan.TrainerID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load followers for new plan", "planId", plan.ID.Hex(), "error", err)
		return
	}
	if len(follows) == 0 {
		return
	}

	trainerName := "A trainer you follow"
	if trainer, err := s.userRepo.GetByID(ctx, plan.TrainerID); err == nil {
		trainerName = trainer.Name
	}

	ns := make([]domain.Notification, len(follows))
	for i, f := range follows {
		ns[i] = domain.Notification{
			UserID:  f.FollowerID,
			Type:    domain.NotificationNewPlan,
			Title:   "New Plan Available",
			Message: fmt.Sprintf("%s published a new plan: %s", trainerName, plan.Title),
			Link:    "/plans/" + plan.ID.Hex(),
		}
	}
	s.notifications.NotifyMany(ctx, ns)
}

// ownedPlan loads a plan and hides plans of other trainers behind ErrPlanNotFound.
func (s *planService) ownedPlan(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsOwnedBy(trainerID) {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (s *planService) getPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError(err)
	}
	return plan, nil
}

func (s *planService) Update(ctx context.Context, trainerID, planID primitive.ObjectID, in PlanInput) (*domain.Plan, error) {
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		plan.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		plan.Description = in.Description
	}
	if in.Price != nil {
		plan.Price = *in.Price
	}
	if in.Duration != 0 {
		plan.Duration = in.Duration
	}
	if in.Category != "" {
		plan.Category = in.Category
	}
	if in.Difficulty != "" {
		plan.Difficulty = in.Difficulty
	}
	if in.Exercises != nil {
		plan.Exercises = carryVideoKeys(plan.Exercises, stripVideoKeys(in.Exercises))
	}
	if in.Tags != nil {
		plan.Tags = in.Tags
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}
	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError(err)
	}
	plan.UpdatedAt = s.now().UTC()
	return plan, nil
}

// carryVideoKeys keeps an uploaded video on an exercise that is still at the
// same position with the same name.
func carryVideoKeys(old, updated []domain.PlanExercise) []domain.PlanExercise {
	for i := range updated {
		if i < len(old) && old[i].Name == updated[i].Name {
			updated[i].VideoKey = old[i].VideoKey
		}
	}
	return updated
}

func (s *planService) Delete(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return internalError(err)
	}

	if s.videos != nil {
		var keys []string
		for _, ex := range plan.Exercises {
			if ex.VideoKey != "" {
				keys = append(keys, ex.VideoKey)
			}
		}
		if len(keys) > 0 {
			if err := s.videos.Delete(ctx, keys...); err != nil {
				slog.WarnContext(ctx, "failed to delete exercise videos", "planId", planID.Hex(), "keys", keys, "error", err)
			}
		}
	}
	return nil
}

func (s *planService) Get(ctx context.Context, viewerID, planID primitive.ObjectID) (*PlanView, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	views, err := s.access.Resolve(ctx, viewerID, []domain.Plan{*plan})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *planService) ListActive(ctx context.Context, viewerID primitive.ObjectID) ([]PlanView, error) {
	return s.list(ctx, viewerID, repository.PlanFilter{ActiveOnly: true, Sort: repository.SortNewest})
}

func (s *planService) Search(ctx context.Context, viewerID primitive.ObjectID, q SearchQuery) ([]PlanView, error) {
	switch q.Sort {
	case "", repository.SortNewest, repository.SortPriceLow, repository.SortPriceHigh, repository.SortRating, repository.SortPopular:
	default:
		return nil, ErrInvalidSort
	}
	if q.Category != "" && !q.Category.Valid() {
		return nil, validationError("Invalid category %q", q.Category)
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		return nil, validationError("Invalid difficulty %q", q.Difficulty)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, validationError("minPrice cannot exceed maxPrice")
	}

	return s.list(ctx, viewerID, repository.PlanFilter{
		ActiveOnly: true,
		Keyword:    q.Keyword,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		MinRating:  q.MinRating,
		Sort:       q.Sort,
	})
}

func (s *planService) ListMine(ctx context.Context, trainerID primitive.ObjectID) ([]PlanView, error) {
	return s.list(ctx, trainerID, repository.PlanFilter{
		TrainerIDs:       []primitive.ObjectID{trainerID},
		RestrictTrainers: true,
		Sort:             repository.SortNewest,
	})
}

func (s *planService) list(ctx context.Context, viewerID primitive.ObjectID, filter repository.PlanFilter) ([]PlanView, error) {
	plans, err := s.planRepo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err)
	}
	return s.access.Resolve(ctx, viewerID, plans)
}

func (s *planService) RecalculateAggregates(ctx context.Context, planID primitive.ObjectID) error {
	sum, count, err := s.reviewRepo.RatingTotals(ctx, planID)
	if err != nil {
		return internalError(err)
	}
	subscribers, err := s.subscriptionRepo.CountByPlan(ctx, planID)
	if err != nil {
		return internalError(err)
	}
	if err := s.planRepo.SetAggregates(ctx, planID, sum, count, subscribers); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return internalError(err)
	}
	return nil
}

func (s *planService) CreateVideoUploadURL(ctx context.Context, trainerID, planID primitive.ObjectID, index int, contentType string) (*VideoUpload, error) {
	if s.videos == nil {
		return nil, ErrStorageDisabled
	}
	objectKey, err := storage.ExerciseVideoKey(planID, contentType)
	if err != nil {
		return nil, validationError("contentType must be a video/* MIME type")
	}
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(plan.Exercises) {
		return nil, ErrExerciseNotFound
	}

	uploadURL, err := s.videos.PresignUpload(ctx, objectKey, contentType)
	if err != nil {
		return nil, internalError(err)
	}

	if err := s.planRepo.SetExerciseVideoKey(ctx, planID, index, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, internalError(err)
	}

	// the replaced video is orphaned once the new key is stored
	if old := plan.Exercises[index].VideoKey; old != "" {
		if err := s.videos.Delete(ctx, old); err != nil {
			slog.WarnContext(ctx, "failed to delete replaced exercise video", "key", old, "error", err)
		}
	}

	return &VideoUpload{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: s.now().Add(storage.VideoURLExpiry),
	}, nil
}

func (s *planService) GetVideoURL(ctx context.Context, viewerID, planID primitive.ObjectID, index int) (string, error) {
	if s.videos == nil {
		return "", ErrStorageDisabled
	}
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return "", err
	}
	full, err := s.access.HasFullAccess(ctx, viewerID, plan)
	if err != nil {
		return "", err
	}
	if !full {
		return "", ErrSubscriptionOnly
	}
	if index < 0 || index >= len(plan.Exercises) {
		return "", ErrExerciseNotFound
	}
	key := plan.Exercises[index].VideoKey
	if key == "" {
		return "", ErrVideoNotFound
	}

	url, err := s.videos.PresignDownload(ctx, key)
	if err != nil {
		return "", internalError(err)
	}
	return url, nil
}

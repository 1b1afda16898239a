package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewDetail is a review with its author's display name.
type ReviewDetail struct {
	Review     domain.Review
	AuthorName string
}

type ReviewService interface {
	Create(ctx context.Context, userID, planID primitive.ObjectID, rating int, comment string) (*ReviewDetail, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]ReviewDetail, error)
	// Update changes rating and/or comment; a zero rating or empty comment keeps the stored value.
	Update(ctx context.Context, userID, reviewID primitive.ObjectID, rating int, comment string) (*domain.Review, error)
	Delete(ctx context.Context, userID, reviewID primitive.ObjectID) error
}

// aggregateRepairer rebuilds plan counters when an incremental update failed.
type aggregateRepairer interface {
	RecalculateAggregates(ctx context.Context, planID primitive.ObjectID) error
}

type reviewService struct {
	reviewRepo       repository.ReviewRepository
	planRepo         repository.PlanRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	tx               repository.Transactor
	repairer         aggregateRepairer
	notifications    NotificationService
	now              func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	planRepo repository.PlanRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	plans PlanService,
	notifications NotificationService,
) ReviewService {
	return &reviewService{
		reviewRepo:       reviewRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		tx:               tx,
		repairer:         plans,
		notifications:    notifications,
		now:              time.Now,
	}
}

func validateReview(rating int, comment string) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return ErrInvalidRating
	}
	if utf8.RuneCountInString(comment) > domain.MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

func (s *reviewService) Create(ctx context.Context, userID, planID primitive.ObjectID, rating int, comment string) (*ReviewDetail, error) {
	comment = strings.TrimSpace(comment)
	if err := validateReview(rating, comment); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError(err)
	}

	verified, err := s.subscriptionRepo.HasActive(ctx, userID, planID, s.now())
	if err != nil {
		return nil, internalError(err)
	}

	review := &domain.Review{
		PlanID:             planID,
		UserID:             userID,
		Rating:             rating,
		Comment:            comment,
		IsVerifiedPurchase: verified,
	}

	var deltaErr error
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.reviewRepo.Create(ctx, review); err != nil {
			return err
		}
		deltaErr = s.planRepo.ApplyRatingDelta(ctx, planID, rating, 1)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, internalError(err)
	}
	s.repairIfNeeded(ctx, planID, deltaErr)

	authorName := ""
	if u, err := s.userRepo.GetByID(ctx, userID); err == nil {
		authorName = u.Name
	}
	who := authorName
	if who == "" {
		who = "Someone"
	}
	s.notifications.Notify(ctx, domain.Notification{
		UserID:  plan.TrainerID,
		Type:    domain.NotificationReview,
		Title:   "New Review",
		Message: fmt.Sprintf("%s reviewed your plan: %s", who, plan.Title),
		Link:    "/plans/" + planID.Hex(),
	})

	return &ReviewDetail{Review: *review, AuthorName: authorName}, nil
}

// repairIfNeeded recomputes the plan aggregates from scratch when the atomic
// delta could not be applied.
func (s *reviewService) repairIfNeeded(ctx context.Context, planID primitive.ObjectID, deltaErr error) {
	// nothing to repair once the plan itself is gone
	if deltaErr == nil || errors.Is(deltaErr, repository.ErrNotFound) {
		return
	}
	slog.WarnContext(ctx, "rating delta failed, recalculating plan aggregates", "planId", planID.Hex(), "error", deltaErr)
	if err := s.repairer.RecalculateAggregates(ctx, planID); err != nil {
		slog.ErrorContext(ctx, "failed to recalculate plan aggregates", "planId", planID.Hex(), "error", err)
	}
}

func (s *reviewService) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]ReviewDetail, error) {
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError(err)
	}

	reviews, err := s.reviewRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, internalError(err)
	}
	details := make([]ReviewDetail, len(reviews))
	if len(reviews) == 0 {
		return details, nil
	}

	authorIDs := make([]primitive.ObjectID, len(reviews))
	for i, r := range reviews {
		authorIDs[i] = r.UserID
	}
	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, internalError(err)
	}
	names := make(map[primitive.ObjectID]string, len(authors))
	for _, a := range authors {
		names[a.ID] = a.Name
	}

	for i, r := range reviews {
		details[i] = ReviewDetail{Review: r, AuthorName: names[r.UserID]}
	}
	return details, nil
}

// ownedReview hides reviews written by someone else behind ErrReviewNotFound.
func (s *reviewService) ownedReview(ctx context.Context, userID, reviewID primitive.ObjectID) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, internalError(err)
	}
	if review.UserID != userID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, userID, reviewID primitive.ObjectID, rating int, comment string) (*domain.Review, error) {
	review, err := s.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	oldRating := review.Rating
	if rating != 0 {
		review.Rating = rating
	}
	if c := strings.TrimSpace(comment); c != "" {
		review.Comment = c
	}
	if err := validateReview(review.Rating, review.Comment); err != nil {
		return nil, err
	}
	review.UpdatedAt = s.now().UTC()

	var deltaErr error
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.reviewRepo.Update(ctx, review); err != nil {
			return err
		}
		if diff := review.Rating - oldRating; diff != 0 {
			deltaErr = s.planRepo.ApplyRatingDelta(ctx, review.PlanID, diff, 0)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, internalError(err)
	}
	s.repairIfNeeded(ctx, review.PlanID, deltaErr)
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, userID, reviewID primitive.ObjectID) error {
	review, err := s.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return err
	}

	var deltaErr error
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
			return err
		}
		deltaErr = s.planRepo.ApplyRatingDelta(ctx, review.PlanID, -review.Rating, -1)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return internalError(err)
	}
	s.repairIfNeeded(ctx, review.PlanID, deltaErr)
	return nil
}

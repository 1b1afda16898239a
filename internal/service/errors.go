package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"errors"
	"fmt"
)

// Kind classifies a service error. The api layer maps each kind to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is returned by every service method. Message is safe to show to
// clients; Err, if set, is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

// internalError wraps an unexpected failure (usually from a repository).
func internalError(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = newError(KindConflict, "User already exists with this email")
	ErrAuthenticationFailed = newError(KindUnauthorized, "Invalid email or password")
	ErrUserNotFound         = newError(KindNotFound, "User not found")
	ErrHashingFailed        = newError(KindInternal, "failed to hash password")
	ErrTokenGeneration      = newError(KindInternal, "failed to generate authentication token")

	ErrPlanNotFound     = newError(KindNotFound, "Plan not found")
	ErrExerciseNotFound = newError(KindNotFound, "Exercise not found")
	ErrVideoNotFound    = newError(KindNotFound, "No video uploaded for this exercise")
	ErrSubscriptionOnly = newError(KindForbidden, "Subscribe to view full plan details")
	ErrStorageDisabled  = newError(KindInternal, "object storage is not configured")
	ErrInvalidSort      = newError(KindValidation, "sort must be one of newest, price_low, price_high, rating, popular")

	ErrAlreadySubscribed = newError(KindConflict, "You already have an active subscription to this plan")
	ErrPlanNotAvailable  = newError(KindValidation, "This plan is no longer available")

	ErrReviewNotFound   = newError(KindNotFound, "Review not found")
	ErrAlreadyReviewed  = newError(KindConflict, "You have already reviewed this plan")
	ErrInvalidRating    = validationError("Rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	ErrCommentTooLong   = validationError("Comment cannot exceed %d characters", domain.MaxCommentLength)
	ErrWorkoutNotFound  = newError(KindNotFound, "Workout log not found")
	ErrInvalidDateRange = newError(KindValidation, "startDate must not be after endDate")

	ErrTrainerNotFound  = newError(KindNotFound, "Trainer not found")
	ErrCannotFollowSelf = newError(KindValidation, "You cannot follow yourself")
	ErrAlreadyFollowing = newError(KindConflict, "Already following this trainer")

	ErrNotificationNotFound = newError(KindNotFound, "Notification not found")
)

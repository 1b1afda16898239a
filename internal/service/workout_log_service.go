package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLogInput is a workout as reported by the user. A zero Date means now.
type WorkoutLogInput struct {
	PlanID         primitive.ObjectID
	Date           time.Time
	Exercises      []domain.ExerciseResult
	Duration       int
	CaloriesBurned int
	Notes          string
	Mood           domain.Mood
}

// WorkoutLogQuery narrows the caller's log listing. From and To must be set together.
type WorkoutLogQuery struct {
	PlanID *primitive.ObjectID
	From   *time.Time
	To     *time.Time
}

// WorkoutLogDetail is a log with the title of its plan.
type WorkoutLogDetail struct {
	Log       domain.WorkoutLog
	PlanTitle string
}

// WorkoutLogResult is a created log and the achievements it unlocked.
type WorkoutLogResult struct {
	Log             domain.WorkoutLog
	NewAchievements []domain.Achievement
}

type WorkoutLogService interface {
	Create(ctx context.Context, userID primitive.ObjectID, in WorkoutLogInput) (*WorkoutLogResult, error)
	List(ctx context.Context, userID primitive.ObjectID, q WorkoutLogQuery) ([]WorkoutLogDetail, error)
	Stats(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutStats, error)
	Delete(ctx context.Context, userID, logID primitive.ObjectID) error
}

type workoutLogService struct {
	workoutLogRepo repository.WorkoutLogRepository
	planRepo       repository.PlanRepository
	achievements   AchievementService
	now            func() time.Time
}

func NewWorkoutLogService(
	workoutLogRepo repository.WorkoutLogRepository,
	planRepo repository.PlanRepository,
	achievements AchievementService,
) WorkoutLogService {
	return &workoutLogService{
		workoutLogRepo: workoutLogRepo,
		planRepo:       planRepo,
		achievements:   achievements,
		now:            time.Now,
	}
}

func validateWorkoutLog(in WorkoutLogInput, now time.Time) error {
	if in.Duration < 1 {
		return validationError("Duration must be at least 1 minute")
	}
	if in.CaloriesBurned < 0 {
		return validationError("caloriesBurned cannot be negative")
	}
	if in.Mood != "" && !in.Mood.Valid() {
		return validationError("Invalid mood %q", in.Mood)
	}
	if in.Date.After(now) {
		return validationError("Workout date cannot be in the future")
	}
	for i, ex := range in.Exercises {
		if ex.ExerciseName == "" {
			return validationError("Exercise %d requires exerciseName", i+1)
		}
		if ex.SetsCompleted < 0 || ex.RepsCompleted < 0 || ex.Weight < 0 {
			return validationError("Exercise %d: values cannot be negative", i+1)
		}
	}
	return nil
}

// Create records a workout and then awards any workout milestones it
// completes. Milestones are evaluated after the log is stored and never
// undo it; each award is a single atomic upsert.
func (s *workoutLogService) Create(ctx context.Context, userID primitive.ObjectID, in WorkoutLogInput) (*WorkoutLogResult, error) {
	now := s.now().UTC()
	if err := validateWorkoutLog(in, now); err != nil {
		return nil, err
	}
	if _, err := s.planRepo.GetByID(ctx, in.PlanID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, internalError(err)
	}

	log := &domain.WorkoutLog{
		UserID:         userID,
		PlanID:         in.PlanID,
		Date:           in.Date,
		Exercises:      in.Exercises,
		Duration:       in.Duration,
		CaloriesBurned: in.CaloriesBurned,
		Notes:          in.Notes,
		Mood:           in.Mood,
	}
	if log.Date.IsZero() {
		log.Date = now
	}

	if _, err := s.workoutLogRepo.Create(ctx, log); err != nil {
		return nil, internalError(err)
	}

	earned, err := s.achievements.CheckWorkoutMilestones(ctx, userID)
	if err != nil {
		// the log is kept; milestones are re-evaluated on the next workout
		slog.WarnContext(ctx, "failed to evaluate workout milestones", "userId", userID.Hex(), "error", err)
	}

	s.achievements.Announce(ctx, earned)
	return &WorkoutLogResult{Log: *log, NewAchievements: earned}, nil
}

func (s *workoutLogService) List(ctx context.Context, userID primitive.ObjectID, q WorkoutLogQuery) ([]WorkoutLogDetail, error) {
	filter := repository.WorkoutLogFilter{UserID: userID, PlanID: q.PlanID}
	if q.From != nil && q.To != nil {
		if q.From.After(*q.To) {
			return nil, ErrInvalidDateRange
		}
		filter.From, filter.To = q.From, q.To
	}

	logs, err := s.workoutLogRepo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err)
	}
	details := make([]WorkoutLogDetail, len(logs))
	if len(logs) == 0 {
		return details, nil
	}

	planSet := make(map[primitive.ObjectID]struct{})
	for _, l := range logs {
		planSet[l.PlanID] = struct{}{}
	}
	planIDs := make([]primitive.ObjectID, 0, len(planSet))
	for id := range planSet {
		planIDs = append(planIDs, id)
	}
	plans, err := s.planRepo.List(ctx, repository.PlanFilter{IDs: planIDs})
	if err != nil {
		return nil, internalError(err)
	}
	titles := make(map[primitive.ObjectID]string, len(plans))
	for _, p := range plans {
		titles[p.ID] = p.Title
	}

	for i, l := range logs {
		details[i] = WorkoutLogDetail{Log: l, PlanTitle: titles[l.PlanID]}
	}
	return details, nil
}

func (s *workoutLogService) Stats(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutStats, error) {
	stats, err := s.workoutLogRepo.Stats(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, internalError(err)
	}
	return stats, nil
}

func (s *workoutLogService) Delete(ctx context.Context, userID, logID primitive.ObjectID) error {
	if err := s.workoutLogRepo.Delete(ctx, logID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return internalError(err)
	}
	return nil
}

package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// workoutMilestone awards Achievement once the user has logged at least
// Count workouts dated within Window (zero Window means all time).
type workoutMilestone struct {
	Window      time.Duration
	Count       int
	Achievement domain.Achievement
}

var workoutMilestones = []workoutMilestone{
	{
		Count: 1,
		Achievement: domain.Achievement{
			Type:        domain.AchievementFirstWorkout,
			Title:       "First Workout! 🎉",
			Description: "Completed your first workout",
			Icon:        "🏋️",
		},
	},
	{
		Window: 7 * 24 * time.Hour,
		Count:  7,
		Achievement: domain.Achievement{
			Type:        domain.AchievementWeekStreak,
			Title:       "7-Day Streak! 🔥",
			Description: "Logged 7 workouts within a week",
			Icon:        "🔥",
		},
	},
	{
		Window: 30 * 24 * time.Hour,
		Count:  30,
		Achievement: domain.Achievement{
			Type:        domain.AchievementMonthStreak,
			Title:       "30-Day Streak! 🏆",
			Description: "Logged 30 workouts within a month",
			Icon:        "🏆",
		},
	},
}

type AchievementService interface {
	// CheckWorkoutMilestones awards every workout milestone the user has
	// reached and not yet earned, and returns the newly earned ones.
	CheckWorkoutMilestones(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error)
	// Announce notifies each owner of a newly earned achievement.
	Announce(ctx context.Context, earned []domain.Achievement)
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error)
}

type achievementService struct {
	achievementRepo repository.AchievementRepository
	workoutLogRepo  repository.WorkoutLogRepository
	notifications   NotificationService
	now             func() time.Time
}

func NewAchievementService(achievementRepo repository.AchievementRepository, workoutLogRepo repository.WorkoutLogRepository, notifications NotificationService) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		workoutLogRepo:  workoutLogRepo,
		notifications:   notifications,
		now:             time.Now,
	}
}

func (s *achievementService) CheckWorkoutMilestones(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error) {
	now := s.now().UTC()
	var earned []domain.Achievement

	for _, m := range workoutMilestones {
		var since time.Time
		if m.Window > 0 {
			since = now.Add(-m.Window)
		}
		count, err := s.workoutLogRepo.CountSince(ctx, userID, since)
		if err != nil {
			return earned, internalError(err)
		}
		if count < m.Count {
			continue
		}

		a := m.Achievement
		a.UserID = userID
		a.EarnedAt = now
		created, err := s.achievementRepo.AwardOnce(ctx, &a)
		if err != nil {
			return earned, internalError(err)
		}
		if !created {
			continue
		}
		earned = append(earned, a)
		slog.InfoContext(ctx, "achievement earned", "userId", userID.Hex(), "type", a.Type)
	}
	return earned, nil
}

func (s *achievementService) Announce(ctx context.Context, earned []domain.Achievement) {
	for _, a := range earned {
		s.notifications.Notify(ctx, domain.Notification{
			UserID:  a.UserID,
			Type:    domain.NotificationAchievement,
			Title:   "Achievement Unlocked!",
			Message: a.Title + " " + a.Description,
			Link:    "/achievements",
		})
	}
}

func (s *achievementService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error) {
	achievements, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return achievements, nil
}

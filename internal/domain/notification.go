package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationNewFollower  NotificationType = "new_follower"
	NotificationNewPlan      NotificationType = "new_plan"
	NotificationSubscription NotificationType = "subscription"
	NotificationAchievement  NotificationType = "achievement"
	NotificationReminder     NotificationType = "reminder"
	NotificationReview       NotificationType = "review"
)

// Notification is owned by its recipient (UserID).
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      NotificationType   `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type AchievementType string

const (
	AchievementFirstWorkout      AchievementType = "first_workout"
	AchievementWeekStreak        AchievementType = "week_streak"
	AchievementMonthStreak       AchievementType = "month_streak"
	AchievementPlanCompleted     AchievementType = "plan_completed"
	AchievementFollowerMilestone AchievementType = "follower_milestone"
	AchievementReviewMilestone   AchievementType = "review_milestone"
)

// Achievement is a one-time badge. (userId, type) is unique.
type Achievement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Type        AchievementType    `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`
	EarnedAt    time.Time          `bson:"earnedAt" json:"earnedAt"`
}

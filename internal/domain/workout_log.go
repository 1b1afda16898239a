// internal/domain/workout_log.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mood recorded with a workout.
type Mood string

const (
	MoodExcellent Mood = "excellent"
	MoodGood      Mood = "good"
	MoodAverage   Mood = "average"
	MoodTired     Mood = "tired"
	MoodExhausted Mood = "exhausted"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodExcellent, MoodGood, MoodAverage, MoodTired, MoodExhausted:
		return true
	}
	return false
}

// ExerciseResult is what the user actually did for one exercise.
type ExerciseResult struct {
	ExerciseName  string  `bson:"exerciseName" json:"exerciseName"`
	SetsCompleted int     `bson:"setsCompleted,omitempty" json:"setsCompleted,omitempty"`
	RepsCompleted int     `bson:"repsCompleted,omitempty" json:"repsCompleted,omitempty"`
	Weight        float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Notes         string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutLog represents one completed workout session by a user.
type WorkoutLog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID         primitive.ObjectID `bson:"planId" json:"planId"`
	Date           time.Time          `bson:"date" json:"date"`
	Exercises      []ExerciseResult   `bson:"exercises" json:"exercises"`
	Duration       int                `bson:"duration" json:"duration"` // minutes
	CaloriesBurned int                `bson:"caloriesBurned,omitempty" json:"caloriesBurned,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Mood           Mood               `bson:"mood,omitempty" json:"mood,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// WorkoutStats is the summary returned by the stats endpoint.
type WorkoutStats struct {
	TotalWorkouts     int     `bson:"totalWorkouts" json:"totalWorkouts"`
	TotalDuration     int     `bson:"totalDuration" json:"totalDuration"`
	TotalCalories     int     `bson:"totalCalories" json:"totalCalories"`
	AverageDuration   float64 `bson:"averageDuration" json:"averageDuration"`
	WorkoutsThisWeek  int     `bson:"workoutsThisWeek" json:"workoutsThisWeek"`
	WorkoutsThisMonth int     `bson:"workoutsThisMonth" json:"workoutsThisMonth"`
}

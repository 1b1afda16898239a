// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanCategory classifies what a plan trains.
type PlanCategory string

const (
	CategoryStrength    PlanCategory = "strength"
	CategoryCardio      PlanCategory = "cardio"
	CategoryFlexibility PlanCategory = "flexibility"
	CategoryWeightLoss  PlanCategory = "weight_loss"
	CategoryMuscleGain  PlanCategory = "muscle_gain"
	CategoryEndurance   PlanCategory = "endurance"
	CategoryGeneral     PlanCategory = "general"
)

func (c PlanCategory) Valid() bool {
	switch c {
	case CategoryStrength, CategoryCardio, CategoryFlexibility, CategoryWeightLoss,
		CategoryMuscleGain, CategoryEndurance, CategoryGeneral:
		return true
	}
	return false
}

// Difficulty of a plan.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

// PlanExercise is one exercise embedded in a Plan.
type PlanExercise struct {
	Name        string `bson:"name" json:"name"`
	Sets        int    `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps        int    `bson:"reps,omitempty" json:"reps,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	VideoKey    string `bson:"videoKey,omitempty" json:"-"` // Object key in S3, internal use
}

// Plan is a trainer-authored, paid fitness program.
//
// RatingSum, ReviewCount and AverageRating are denormalized from the reviews
// collection and SubscriberCount from the subscriptions collection. They are
// only ever changed through atomic delta updates (see PlanRepository).
type Plan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Price           float64            `bson:"price" json:"price"`
	Duration        int                `bson:"duration" json:"duration"` // days
	Category        PlanCategory       `bson:"category" json:"category"`
	Difficulty      Difficulty         `bson:"difficulty" json:"difficulty"`
	TrainerID       primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Exercises       []PlanExercise     `bson:"exercises" json:"exercises"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	RatingSum       int                `bson:"ratingSum" json:"-"`
	ReviewCount     int                `bson:"reviewCount" json:"reviewCount"`
	AverageRating   float64            `bson:"averageRating" json:"averageRating"`
	SubscriberCount int                `bson:"subscriberCount" json:"subscriberCount"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsOwnedBy reports whether the plan belongs to the given trainer.
func (p *Plan) IsOwnedBy(trainerID primitive.ObjectID) bool {
	return p.TrainerID == trainerID
}

// AverageRating returns sum/count, or 0 when there are no ratings.
func AverageRating(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

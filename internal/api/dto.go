package api

import (
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"
)

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	Certifications string      `json:"certifications,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// TrainerRef is the trainer reference embedded in plans.
type TrainerRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Certifications string `json:"certifications,omitempty"`
}

type ExerciseResponse struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets,omitempty"`
	Reps        int    `json:"reps,omitempty"`
	Description string `json:"description,omitempty"`
	HasVideo    bool   `json:"hasVideo"`
}

// PlanResponse is the full view of a plan.
type PlanResponse struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Price           float64             `json:"price"`
	Duration        int                 `json:"duration"`
	Category        domain.PlanCategory `json:"category"`
	Difficulty      domain.Difficulty   `json:"difficulty"`
	TrainerID       string              `json:"trainerId"`
	Trainer         *TrainerRef         `json:"trainer,omitempty"`
	Exercises       []ExerciseResponse  `json:"exercises"`
	Tags            []string            `json:"tags"`
	IsActive        bool                `json:"isActive"`
	AverageRating   float64             `json:"averageRating"`
	ReviewCount     int                 `json:"reviewCount"`
	SubscriberCount int                 `json:"subscriberCount"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// PlanPreviewResponse is what viewers without a subscription see.
type PlanPreviewResponse struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Price           float64     `json:"price"`
	Duration        int         `json:"duration"`
	Trainer         *TrainerRef `json:"trainer,omitempty"`
	AverageRating   float64     `json:"averageRating"`
	ReviewCount     int         `json:"reviewCount"`
	SubscriberCount int         `json:"subscriberCount"`
	Preview         bool        `json:"preview"`
	Message         string      `json:"message"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:             user.ID.Hex(),
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		Certifications: user.Certifications,
		CreatedAt:      user.CreatedAt,
	}
}

// MapUsersToResponse converts a slice of domain.User to UserResponse DTOs.
func MapUsersToResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = MapUserToResponse(&users[i])
	}
	return out
}

func mapTrainerRef(u *domain.User) *TrainerRef {
	if u == nil {
		return nil
	}
	return &TrainerRef{
		ID:             u.ID.Hex(),
		Name:           u.Name,
		Email:          u.Email,
		Certifications: u.Certifications,
	}
}

func mapPlan(p *domain.Plan, trainer *domain.User) PlanResponse {
	exercises := make([]ExerciseResponse, len(p.Exercises))
	for i, ex := range p.Exercises {
		exercises[i] = ExerciseResponse{
			Name:        ex.Name,
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			Description: ex.Description,
			HasVideo:    ex.VideoKey != "",
		}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PlanResponse{
		ID:              p.ID.Hex(),
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		Duration:        p.Duration,
		Category:        p.Category,
		Difficulty:      p.Difficulty,
		TrainerID:       p.TrainerID.Hex(),
		Trainer:         mapTrainerRef(trainer),
		Exercises:       exercises,
		Tags:            tags,
		IsActive:        p.IsActive,
		AverageRating:   p.AverageRating,
		ReviewCount:     p.ReviewCount,
		SubscriberCount: p.SubscriberCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// mapPlanView renders a plan the way the access policy allows the viewer to see it.
func mapPlanView(v service.PlanView) any {
	if !v.IsPreview() {
		return mapPlan(&v.Plan, v.Trainer)
	}
	return PlanPreviewResponse{
		ID:              v.Plan.ID.Hex(),
		Title:           v.Plan.Title,
		Price:           v.Plan.Price,
		Duration:        v.Plan.Duration,
		Trainer:         mapTrainerRef(v.Trainer),
		AverageRating:   v.Plan.AverageRating,
		ReviewCount:     v.Plan.ReviewCount,
		SubscriberCount: v.Plan.SubscriberCount,
		Preview:         true,
		Message:         service.ErrSubscriptionOnly.Message,
	}
}

func mapPlanViews(views []service.PlanView) []any {
	out := make([]any, len(views))
	for i, v := range views {
		out[i] = mapPlanView(v)
	}
	return out
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is stored only; there is no payment gateway.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Subscription is a time-boxed grant of access from one user to one plan.
type Subscription struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID        primitive.ObjectID `bson:"planId" json:"planId"`
	StartDate     time.Time          `bson:"startDate" json:"startDate"`
	EndDate       time.Time          `bson:"endDate" json:"endDate"`
	Amount        float64            `bson:"amount" json:"amount"`
	PaymentStatus PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsActive reports whether the subscription grants access at now.
// Expiry is a pure timestamp comparison: endDate >= now.
func (s *Subscription) IsActive(now time.Time) bool {
	return !s.EndDate.Before(now)
}

// SubscriptionEnd computes the end date for a plan of durationDays starting at start.
func SubscriptionEnd(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

// Review is a rating + comment left by one user on one plan. (planId, userId) is unique.
type Review struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID             primitive.ObjectID `bson:"planId" json:"planId"`
	UserID             primitive.ObjectID `bson:"userId" json:"userId"`
	Rating             int                `bson:"rating" json:"rating"`
	Comment            string             `bson:"comment" json:"comment"`
	IsVerifiedPurchase bool               `bson:"isVerifiedPurchase" json:"isVerifiedPurchase"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

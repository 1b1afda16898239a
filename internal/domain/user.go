package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between account roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleUser    Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTrainer || r == RoleUser
}

// User represents an account in the system (either a Trainer or a regular User).
// Role is fixed at registration; there is no update path for it.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`    // Unique index
	PasswordHash   string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role           Role               `bson:"role" json:"role"`
	Certifications string             `bson:"certifications,omitempty" json:"certifications,omitempty"` // Trainer only
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsUser() bool {
	return u.Role == RoleUser
}

// Follow is one (follower, trainer) membership. The pair is unique.
type Follow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowerID primitive.ObjectID `bson:"followerId" json:"followerId"`
	TrainerID  primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

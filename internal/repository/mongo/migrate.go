package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// legacyUser is the part of an old user document that embedded its follows.
// Both field names were used over time.
type legacyUser struct {
	ID               primitive.ObjectID   `bson:"_id"`
	Following        []primitive.ObjectID `bson:"following"`
	FollowedTrainers []primitive.ObjectID `bson:"followedTrainers"`
}

// FollowMigrationResult counts what MigrateLegacyFollows did.
type FollowMigrationResult struct {
	Users   int // user documents that carried a legacy array
	Created int
	Skipped int // already present, self-follows, or not a trainer
}

// legacyFollowIDs merges both legacy arrays, dropping duplicates and self-follows.
func legacyFollowIDs(u legacyUser) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, list := range [][]primitive.ObjectID{u.Following, u.FollowedTrainers} {
		for _, id := range list {
			if id == u.ID || id.IsZero() || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// MigrateLegacyFollows moves embedded following/followedTrainers arrays into
// the follows collection and removes them from the user documents. It can be
// run repeatedly.
func MigrateLegacyFollows(ctx context.Context, db *mongo.Database) (FollowMigrationResult, error) {
	var result FollowMigrationResult
	users := db.Collection(userCollectionName)
	follows := NewMongoFollowRepository(db)

	trainers, err := trainerIDSet(ctx, users)
	if err != nil {
		return result, err
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"following": bson.M{"$exists": true}},
		bson.M{"followedTrainers": bson.M{"$exists": true}},
	}}
	cursor, err := users.Find(ctx, filter, options.Find().SetProjection(bson.M{"following": 1, "followedTrainers": 1}))
	if err != nil {
		return result, fmt.Errorf("find legacy users: %w", err)
	}
	defer cursor.Close(ctx)

	now := time.Now().UTC()
	for cursor.Next(ctx) {
		var u legacyUser
		if err := cursor.Decode(&u); err != nil {
			return result, fmt.Errorf("decode legacy user: %w", err)
		}
		result.Users++

		ids := legacyFollowIDs(u)
		result.Skipped += len(u.Following) + len(u.FollowedTrainers) - len(ids)
		for _, trainerID := range ids {
			if !trainers[trainerID] {
				result.Skipped++
				continue
			}
			err := follows.Create(ctx, &domain.Follow{FollowerID: u.ID, TrainerID: trainerID, CreatedAt: now})
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				result.Skipped++
			case err != nil:
				return result, fmt.Errorf("create follow %s -> %s: %w", u.ID.Hex(), trainerID.Hex(), err)
			default:
				result.Created++
			}
		}

		unset := bson.M{"$unset": bson.M{"following": "", "followedTrainers": ""}}
		if _, err := users.UpdateByID(ctx, u.ID, unset); err != nil {
			return result, fmt.Errorf("clear legacy fields of %s: %w", u.ID.Hex(), err)
		}
		slog.DebugContext(ctx, "migrated legacy follows", "userId", u.ID.Hex(), "trainers", len(ids))
	}
	return result, cursor.Err()
}

func trainerIDSet(ctx context.Context, users *mongo.Collection) (map[primitive.ObjectID]bool, error) {
	cursor, err := users.Find(ctx, bson.M{"role": domain.RoleTrainer}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find trainers: %w", err)
	}
	defer cursor.Close(ctx)

	set := make(map[primitive.ObjectID]bool)
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		set[doc.ID] = true
	}
	return set, cursor.Err()
}

package mongo

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const achievementCollectionName = "achievements"

// mongoAchievementRepository implements repository.AchievementRepository
type mongoAchievementRepository struct {
	collection *mongo.Collection
}

// NewMongoAchievementRepository creates a new Achievement repository backed by MongoDB.
func NewMongoAchievementRepository(db *mongo.Database) repository.AchievementRepository {
	return &mongoAchievementRepository{
		collection: db.Collection(achievementCollectionName),
	}
}

// AwardOnce upserts on (userId, type) with $setOnInsert, so an existing badge
// is left untouched and two racing requests award it only once.
func (r *mongoAchievementRepository) AwardOnce(ctx context.Context, a *domain.Achievement) (bool, error) {
	if a.EarnedAt.IsZero() {
		a.EarnedAt = time.Now().UTC()
	}
	newID := primitive.NewObjectID()

	filter := bson.M{"userId": a.UserID, "type": a.Type}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":         newID,
		"title":       a.Title,
		"description": a.Description,
		"icon":        a.Icon,
		"earnedAt":    a.EarnedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// Two concurrent upserts can both miss the filter; the loser hits the unique index.
		// Inside a session transaction the error has already aborted it, so it is returned.
		if mongo.IsDuplicateKeyError(err) && mongo.SessionFromContext(ctx) == nil {
			return false, nil
		}
		return false, err
	}
	if result.UpsertedCount == 0 {
		return false, nil
	}
	a.ID = newID
	return true, nil
}

func (r *mongoAchievementRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Achievement, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "earnedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	achievements := []domain.Achievement{}
	if err = cursor.All(ctx, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

// EnsureAchievementIndexes creates necessary indexes for the achievements collection.
func EnsureAchievementIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "earnedAt", Value: -1}}},
	})
}

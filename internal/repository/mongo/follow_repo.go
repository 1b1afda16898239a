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

const followCollectionName = "follows"

// mongoFollowRepository implements repository.FollowRepository.
type mongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new Follow repository backed by MongoDB.
func NewMongoFollowRepository(db *mongo.Database) repository.FollowRepository {
	return &mongoFollowRepository{
		collection: db.Collection(followCollectionName),
	}
}

// Create inserts the relation. The unique (followerId, trainerId) index turns
// a second follow into ErrDuplicate.
func (r *mongoFollowRepository) Create(ctx context.Context, follow *domain.Follow) error {
	follow.ID = primitive.NewObjectID()
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, follow); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoFollowRepository) Delete(ctx context.Context, followerID, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"followerId": followerID, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoFollowRepository) TrainerIDsFollowedBy(ctx context.Context, followerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	follows, err := r.find(ctx, bson.M{"followerId": followerID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(follows))
	for i, f := range follows {
		ids[i] = f.TrainerID
	}
	return ids, nil
}

func (r *mongoFollowRepository) FollowersOf(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Follow, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID})
}

func (r *mongoFollowRepository) find(ctx context.Context, filter bson.M) ([]domain.Follow, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	follows := []domain.Follow{}
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

// EnsureFollowIndexes creates necessary indexes for the follows collection.
func EnsureFollowIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "followerId", Value: 1}, {Key: "trainerId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// "who follows me", newest first
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
}

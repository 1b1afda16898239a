package mongo

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewCollectionName = "reviews"

// mongoReviewRepository implements repository.ReviewRepository
type mongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new Review repository backed by MongoDB.
func NewMongoReviewRepository(db *mongo.Database) repository.ReviewRepository {
	return &mongoReviewRepository{
		collection: db.Collection(reviewCollectionName),
	}
}

// Create inserts a review. The unique (planId, userId) index rejects a second
// review by the same user even when two requests race.
func (r *mongoReviewRepository) Create(ctx context.Context, review *domain.Review) (primitive.ObjectID, error) {
	review.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return review.ID, nil
}

func (r *mongoReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Review, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoReviewRepository) findOne(ctx context.Context, filter bson.M) (*domain.Review, error) {
	var review domain.Review
	if err := r.collection.FindOne(ctx, filter).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *mongoReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"rating":    review.Rating,
		"comment":   review.Comment,
		"updatedAt": review.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoReviewRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.Review, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []domain.Review{}
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ratingTotalsPipeline sums and counts the ratings of one plan.
func ratingTotalsPipeline(planID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"planId": planID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"sum":   bson.M{"$sum": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
}

func (r *mongoReviewRepository) RatingTotals(ctx context.Context, planID primitive.ObjectID) (int, int, error) {
	cursor, err := r.collection.Aggregate(ctx, ratingTotalsPipeline(planID))
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Sum   int `bson:"sum"`
		Count int `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Sum, rows[0].Count, nil
}

// EnsureReviewIndexes creates necessary indexes for the reviews collection.
func EnsureReviewIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// at most one review per (plan, user)
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "planId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
}

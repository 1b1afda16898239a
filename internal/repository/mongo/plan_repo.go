// internal/repository/mongo/plan_repo.go
package mongo

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan with zeroed aggregates.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.TrainerID == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan requires trainerId and title")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	plan.RatingSum, plan.ReviewCount, plan.AverageRating, plan.SubscriberCount = 0, 0, 0, 0
	if plan.Exercises == nil {
		plan.Exercises = []domain.PlanExercise{}
	}

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return primitive.NilObjectID, err
	}
	return plan.ID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns the plans matching filter, ordered per filter.Sort.
func (r *mongoPlanRepository) List(ctx context.Context, filter repository.PlanFilter) ([]domain.Plan, error) {
	if filter.RestrictTrainers && len(filter.TrainerIDs) == 0 {
		return []domain.Plan{}, nil
	}

	findOptions := options.Find().SetSort(planSort(filter.Sort))
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, planFilter(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.Plan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// planFilter translates a PlanFilter into a query document.
func planFilter(f repository.PlanFilter) bson.M {
	query := bson.M{}
	if f.ActiveOnly {
		query["isActive"] = true
	}
	if len(f.IDs) > 0 {
		query["_id"] = bson.M{"$in": f.IDs}
	}
	if len(f.TrainerIDs) > 0 {
		query["trainerId"] = bson.M{"$in": f.TrainerIDs}
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		// keyword is user input, match it literally
		re := primitive.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		}
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Difficulty != "" {
		query["difficulty"] = f.Difficulty
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.MinRating != nil {
		query["averageRating"] = bson.M{"$gte": *f.MinRating}
	}
	return query
}

// planSort maps a PlanSort to a sort document. Ties fall back to newest first.
func planSort(s repository.PlanSort) bson.D {
	newest := bson.E{Key: "createdAt", Value: -1}
	switch s {
	case repository.SortPriceLow:
		return bson.D{{Key: "price", Value: 1}, newest}
	case repository.SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}, newest}
	case repository.SortRating:
		return bson.D{{Key: "averageRating", Value: -1}, newest}
	case repository.SortPopular:
		return bson.D{{Key: "subscriberCount", Value: -1}, newest}
	default:
		return bson.D{newest}
	}
}

// Update writes the editable fields. Aggregates and TrainerID are never changed here.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"title":       plan.Title,
			"description": plan.Description,
			"price":       plan.Price,
			"duration":    plan.Duration,
			"category":    plan.Category,
			"difficulty":  plan.Difficulty,
			"exercises":   plan.Exercises,
			"tags":        plan.Tags,
			"isActive":    plan.IsActive,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID, "trainerId": plan.TrainerID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a plan owned by trainerID.
func (r *mongoPlanRepository) Delete(ctx context.Context, planID, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": planID, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ratingDeltaPipeline adds the deltas and derives averageRating from the new
// totals in the same document update, so concurrent writers cannot lose updates.
func ratingDeltaPipeline(sumDelta, countDelta int, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"ratingSum":   bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$ratingSum", 0}}, sumDelta}},
			"reviewCount": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$reviewCount", 0}}, countDelta}},
			"updatedAt":   now,
		}}},
		{{Key: "$set", Value: bson.M{
			"averageRating": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$reviewCount", 0}},
				bson.M{"$divide": bson.A{"$ratingSum", "$reviewCount"}},
				0,
			}},
		}}},
	}
}

func (r *mongoPlanRepository) ApplyRatingDelta(ctx context.Context, planID primitive.ObjectID, sumDelta, countDelta int) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, ratingDeltaPipeline(sumDelta, countDelta, time.Now().UTC()))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanRepository) IncrementSubscribers(ctx context.Context, planID primitive.ObjectID, delta int) error {
	update := bson.M{"$inc": bson.M{"subscriberCount": delta}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoPlanRepository) SetAggregates(ctx context.Context, planID primitive.ObjectID, ratingSum, reviewCount, subscriberCount int) error {
	update := bson.M{"$set": bson.M{
		"ratingSum":       ratingSum,
		"reviewCount":     reviewCount,
		"averageRating":   domain.AverageRating(ratingSum, reviewCount),
		"subscriberCount": subscriberCount,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetExerciseVideoKey stores the object key on exercise #index. The filter
// requires that element to exist, so an out-of-range index yields ErrNotFound.
func (r *mongoPlanRepository) SetExerciseVideoKey(ctx context.Context, planID primitive.ObjectID, index int, key string) error {
	field := fmt.Sprintf("exercises.%d", index)
	filter := bson.M{"_id": planID, field: bson.M{"$exists": true}}
	update := bson.M{"$set": bson.M{field + ".videoKey": key, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "difficulty", Value: 1}}},
		{Keys: bson.D{{Key: "averageRating", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

// internal/repository/mongo/workout_log_repo.go
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

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a new workout log.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if log.UserID == primitive.NilObjectID || log.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires userId and planId")
	}
	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	log.CreatedAt = now
	if log.Date.IsZero() {
		log.Date = now
	}
	if log.Exercises == nil {
		log.Exercises = []domain.ExerciseResult{}
	}

	if _, err := r.collection.InsertOne(ctx, log); err != nil {
		return primitive.NilObjectID, err
	}
	return log.ID, nil
}

// workoutLogFilter translates a WorkoutLogFilter into a query document.
func workoutLogFilter(f repository.WorkoutLogFilter) bson.M {
	query := bson.M{"userId": f.UserID}
	if f.PlanID != nil {
		query["planId"] = *f.PlanID
	}
	if f.From != nil || f.To != nil {
		date := bson.M{}
		if f.From != nil {
			date["$gte"] = *f.From
		}
		if f.To != nil {
			date["$lte"] = *f.To
		}
		query["date"] = date
	}
	return query
}

// List retrieves the user's logs, newest date first.
func (r *mongoWorkoutLogRepository) List(ctx context.Context, filter repository.WorkoutLogFilter) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, workoutLogFilter(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.WorkoutLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Delete removes a log owned by userID.
func (r *mongoWorkoutLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutLogRepository) CountSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int, error) {
	filter := bson.M{"userId": userID}
	if !since.IsZero() {
		filter["date"] = bson.M{"$gte": since}
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	return int(count), err
}

// workoutStatsPipeline computes every stat in one pass over the user's logs.
func workoutStatsPipeline(userID primitive.ObjectID, now time.Time) mongo.Pipeline {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)
	countSince := func(t time.Time) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$gte": bson.A{"$date", t}}, 1, 0}}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalWorkouts":     bson.M{"$sum": 1},
			"totalDuration":     bson.M{"$sum": "$duration"},
			"totalCalories":     bson.M{"$sum": bson.M{"$ifNull": bson.A{"$caloriesBurned", 0}}},
			"averageDuration":   bson.M{"$avg": "$duration"},
			"workoutsThisWeek":  countSince(weekAgo),
			"workoutsThisMonth": countSince(monthAgo),
		}}},
	}
}

func (r *mongoWorkoutLogRepository) Stats(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.WorkoutStats, error) {
	cursor, err := r.collection.Aggregate(ctx, workoutStatsPipeline(userID, now))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []domain.WorkoutStats
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &domain.WorkoutStats{}, nil
	}
	return &rows[0], nil
}

// EnsureWorkoutLogIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}}},
	})
}

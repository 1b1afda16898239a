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

const (
	subscriptionCollectionName      = "subscriptions"
	subscriptionGuardCollectionName = "subscription_guards"
)

// mongoSubscriptionRepository implements repository.SubscriptionRepository
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
	// guards holds one document per (userId, planId) with the end of the
	// pair's current subscription. Its unique index serializes subscribers.
	guards *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new Subscription repository backed by MongoDB.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
		guards:     db.Collection(subscriptionGuardCollectionName),
	}
}

// claimFilter matches the pair's guard only once its previous subscription has ended.
func claimFilter(userID, planID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{"userId": userID, "planId": planID, "activeUntil": bson.M{"$lt": now}}
}

// ClaimActive upserts the pair's guard. When a live guard exists the filter
// misses, the upsert collides with the unique index and the claim is refused.
func (r *mongoSubscriptionRepository) ClaimActive(ctx context.Context, userID, planID primitive.ObjectID, now, until time.Time) (bool, error) {
	update := bson.M{"$set": bson.M{"activeUntil": until}}
	_, err := r.guards.UpdateOne(ctx, claimFilter(userID, planID, now), update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoSubscriptionRepository) ReleaseActive(ctx context.Context, userID, planID primitive.ObjectID, until time.Time) error {
	filter := bson.M{"userId": userID, "planId": planID, "activeUntil": until}
	_, err := r.guards.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"activeUntil": time.Time{}}})
	return err
}

func (r *mongoSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	if sub.UserID == primitive.NilObjectID || sub.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("subscription requires userId and planId")
	}
	sub.ID = primitive.NewObjectID()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, sub); err != nil {
		return primitive.NilObjectID, err
	}
	return sub.ID, nil
}

// activeFilter matches subscriptions with endDate >= now.
func activeFilter(userID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{"userId": userID, "endDate": bson.M{"$gte": now}}
}

func (r *mongoSubscriptionRepository) HasActive(ctx context.Context, userID, planID primitive.ObjectID, now time.Time) (bool, error) {
	filter := activeFilter(userID, now)
	filter["planId"] = planID
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoSubscriptionRepository) ActivePlanIDs(ctx context.Context, userID primitive.ObjectID, planIDs []primitive.ObjectID, now time.Time) ([]primitive.ObjectID, error) {
	if len(planIDs) == 0 {
		return []primitive.ObjectID{}, nil
	}
	filter := activeFilter(userID, now)
	filter["planId"] = bson.M{"$in": planIDs}

	values, err := r.collection.Distinct(ctx, "planId", filter)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *mongoSubscriptionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Subscription, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoSubscriptionRepository) ListActiveByPlans(ctx context.Context, planIDs []primitive.ObjectID, now time.Time) ([]domain.Subscription, error) {
	if len(planIDs) == 0 {
		return []domain.Subscription{}, nil
	}
	return r.find(ctx, bson.M{"planId": bson.M{"$in": planIDs}, "endDate": bson.M{"$gte": now}})
}

func (r *mongoSubscriptionRepository) CountByPlan(ctx context.Context, planID primitive.ObjectID) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"planId": planID})
	return int(count), err
}

func (r *mongoSubscriptionRepository) find(ctx context.Context, filter bson.M) ([]domain.Subscription, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := []domain.Subscription{}
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// EnsureSubscriptionIndexes creates necessary indexes for the subscriptions collection.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// access checks: (user, plan) with endDate range
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}, {Key: "endDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "planId", Value: 1}, {Key: "endDate", Value: -1}},
		},
	})
}

// EnsureSubscriptionGuardIndexes creates the unique (userId, planId) index ClaimActive relies on.
func EnsureSubscriptionGuardIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}

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

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Notification repository backed by MongoDB.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

func prepareNotification(n *domain.Notification, now time.Time) {
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	prepareNotification(n, time.Now().UTC())
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, err
	}
	return n.ID, nil
}

func (r *mongoNotificationRepository) CreateMany(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(ns))
	for i := range ns {
		prepareNotification(&ns[i], now)
		docs[i] = ns[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []domain.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
	return int(count), err
}

// MarkRead flags one notification as read. Only the recipient can do so.
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	return err
}

func (r *mongoNotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
}

package mongo

import (
	"context"
	"log/slog"
	"time"

	"alcyxob/fitplanhub/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection; Connect alone does not.
	if err := Ping(context.Background(), client); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// Ping checks that the primary is reachable. Used at startup and by /health.
func Ping(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(pingCtx, readpref.Primary())
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Call once during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureFollowIndexes(ctx, db.Collection(followCollectionName))
	EnsurePlanIndexes(ctx, db.Collection(planCollectionName))
	EnsureSubscriptionIndexes(ctx, db.Collection(subscriptionCollectionName))
	EnsureSubscriptionGuardIndexes(ctx, db.Collection(subscriptionGuardCollectionName))
	EnsureReviewIndexes(ctx, db.Collection(reviewCollectionName))
	EnsureWorkoutLogIndexes(ctx, db.Collection(workoutLogCollectionName))
	EnsureNotificationIndexes(ctx, db.Collection(notificationCollectionName))
	EnsureAchievementIndexes(ctx, db.Collection(achievementCollectionName))
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		slog.Warn("failed to create indexes", "collection", collection.Name(), "error", err)
	}
}

// transactor implements repository.Transactor with MongoDB sessions.
// Transactions need a replica set, so they are opt-in; when disabled fn runs
// directly and atomicity is limited to the single-document updates it makes.
type transactor struct {
	client  *mongo.Client
	enabled bool
}

// NewTransactor returns a Transactor backed by client.
func NewTransactor(client *mongo.Client, enabled bool) repository.Transactor {
	return &transactor{client: client, enabled: enabled}
}

func (t *transactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

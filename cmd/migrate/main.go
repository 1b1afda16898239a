// Command migrate moves follows embedded in old user documents into the
// follows collection.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"alcyxob/fitplanhub/internal/config"
	"alcyxob/fitplanhub/internal/repository/mongo"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		slog.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongo.DisconnectDB(client); err != nil {
			slog.Error("failed to disconnect MongoDB", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db := client.Database(cfg.Database.Name)
	// the unique follower/trainer index makes re-runs skip existing follows
	mongo.EnsureIndexes(ctx, db)

	result, err := mongo.MigrateLegacyFollows(ctx, db)
	if err != nil {
		slog.Error("migration failed", "error", err, "usersDone", result.Users, "created", result.Created)
		os.Exit(1)
	}
	slog.Info("migration complete", "users", result.Users, "created", result.Created, "skipped", result.Skipped)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/fitplanhub/internal/api"
	"alcyxob/fitplanhub/internal/config"
	"alcyxob/fitplanhub/internal/email"
	"alcyxob/fitplanhub/internal/repository/mongo"
	"alcyxob/fitplanhub/internal/service"
	"alcyxob/fitplanhub/internal/storage"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// @title FitPlanHub API
// @version 1.0
// @description Trainers publish fitness plans; users subscribe, review, follow trainers and log workouts.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)
	slog.Info("starting FitPlanHub server", "address", cfg.Server.Address)

	// --- Error tracking ---
	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Sentry.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		slog.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		slog.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			slog.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), time.Minute)
	mongo.EnsureIndexes(indexCtx, appDB)
	cancelIndexes()

	// --- Storage and email (both optional) ---
	var videoStore storage.VideoStore
	if cfg.S3.Enabled() {
		videoStore, err = storage.NewS3VideoStore(context.Background(), cfg.S3)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("s3.bucket_name not set, exercise videos are disabled")
	}

	var mailer service.Mailer
	if cfg.Email.SendGridAPIKey != "" {
		mailer = email.NewSendGridMailer(cfg.Email)
	} else {
		slog.Info("email.sendgrid_api_key not set, notification email is disabled")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	followRepo := mongo.NewMongoFollowRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(appDB)
	reviewRepo := mongo.NewMongoReviewRepository(appDB)
	workoutLogRepo := mongo.NewMongoWorkoutLogRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	achievementRepo := mongo.NewMongoAchievementRepository(appDB)
	tx := mongo.NewTransactor(dbClient, cfg.Database.Transactions)

	// --- Initialize Services ---
	notificationService := service.NewNotificationService(notificationRepo, userRepo, mailer)
	accessPolicy := service.NewAccessPolicy(subscriptionRepo, userRepo)
	achievementService := service.NewAchievementService(achievementRepo, workoutLogRepo, notificationService)
	authService := service.NewAuthService(userRepo, followRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(planRepo, reviewRepo, subscriptionRepo, followRepo, userRepo, accessPolicy, notificationService, videoStore)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, planRepo, userRepo, tx, notificationService)
	reviewService := service.NewReviewService(reviewRepo, planRepo, subscriptionRepo, userRepo, tx, planService, notificationService)
	workoutLogService := service.NewWorkoutLogService(workoutLogRepo, planRepo, achievementService)
	trainerService := service.NewTrainerService(userRepo, followRepo, planRepo, subscriptionRepo, accessPolicy, notificationService, cfg.Feed.PageSize)

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(api.RequestLogger(), gin.CustomRecovery(api.RecoveryHandler))
	if sentryEnabled {
		// Registered after recovery so repanics are still turned into a 500 envelope.
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(api.CORSMiddleware(cfg.Server.AllowedOrigins))

	api.SetupRoutes(router, api.Dependencies{
		JWTSecret: cfg.JWT.Secret,
		Ping: func(ctx context.Context) error {
			return mongo.Ping(ctx, dbClient)
		},
		Auth:          authService,
		Plans:         planService,
		Subscriptions: subscriptionService,
		Reviews:       reviewService,
		WorkoutLogs:   workoutLogService,
		Trainers:      trainerService,
		Notifications: notificationService,
		Achievements:  achievementService,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server failed", "error", err)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server exited")
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

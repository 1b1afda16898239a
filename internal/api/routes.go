package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Dependencies are the services the HTTP API is built on.
type Dependencies struct {
	JWTSecret string
	// Ping reports whether the database is reachable. Nil skips the check.
	Ping func(ctx context.Context) error

	Auth          service.AuthService
	Plans         service.PlanService
	Subscriptions service.SubscriptionService
	Reviews       service.ReviewService
	WorkoutLogs   service.WorkoutLogService
	Trainers      service.TrainerService
	Notifications service.NotificationService
	Achievements  service.AchievementService
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Auth)
	planHandler := NewPlanHandler(deps.Plans)
	subscriptionHandler := NewSubscriptionHandler(deps.Subscriptions)
	reviewHandler := NewReviewHandler(deps.Reviews)
	workoutLogHandler := NewWorkoutLogHandler(deps.WorkoutLogs)
	trainerHandler := NewTrainerHandler(deps.Trainers)
	notificationHandler := NewNotificationHandler(deps.Notifications, deps.Achievements)

	authMiddleware := AuthMiddleware(deps.JWTSecret)
	trainerOnly := RoleMiddleware(domain.RoleTrainer)
	userOnly := RoleMiddleware(domain.RoleUser)

	router.GET("/health", healthHandler(deps.Ping))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/profile", authMiddleware, authHandler.Profile)
		}
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		plans := protected.Group("/plans")
		{
			plans.GET("", planHandler.ListPlans)
			plans.GET("/search", planHandler.SearchPlans)
			plans.GET("/my-plans", trainerOnly, planHandler.MyPlans)
			plans.GET("/:id", planHandler.GetPlan)
			plans.POST("", trainerOnly, planHandler.CreatePlan)
			plans.PUT("/:id", trainerOnly, planHandler.UpdatePlan)
			plans.DELETE("/:id", trainerOnly, planHandler.DeletePlan)
			plans.POST("/:id/exercises/:index/video", trainerOnly, planHandler.CreateExerciseVideoUpload)
			plans.GET("/:id/exercises/:index/video", planHandler.GetExerciseVideo)
		}

		subscriptions := protected.Group("/subscriptions", userOnly)
		{
			subscriptions.POST("", subscriptionHandler.Subscribe)
			subscriptions.GET("", subscriptionHandler.MySubscriptions)
		}

		reviews := protected.Group("/reviews")
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.GET("/plan/:planId", reviewHandler.PlanReviews)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		workoutLogs := protected.Group("/workout-logs", userOnly)
		{
			workoutLogs.GET("", workoutLogHandler.ListWorkoutLogs)
			workoutLogs.POST("", workoutLogHandler.CreateWorkoutLog)
			workoutLogs.GET("/stats", workoutLogHandler.WorkoutStats)
			workoutLogs.DELETE("/:id", workoutLogHandler.DeleteWorkoutLog)
		}

		trainers := protected.Group("/trainers")
		{
			trainers.GET("", trainerHandler.ListTrainers)
			trainers.GET("/followed", trainerHandler.FollowedTrainers)
			trainers.GET("/feed", trainerHandler.Feed)
			trainers.GET("/my-followers", trainerOnly, trainerHandler.MyFollowers)
			trainers.GET("/my-subscribers", trainerOnly, trainerHandler.MySubscribers)
			trainers.GET("/:id", trainerHandler.GetTrainer)
			trainers.POST("/:id/follow", trainerHandler.FollowTrainer)
			trainers.DELETE("/:id/unfollow", trainerHandler.UnfollowTrainer)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		protected.GET("/achievements", notificationHandler.ListAchievements)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Route not found")
	})
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, Envelope{Success: false, Message: "Database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, Envelope{Success: true, Message: "FitPlanHub API is running"})
	}
}

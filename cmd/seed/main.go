// Command seed resets the database and fills it with sample accounts, plans,
// subscriptions, reviews and workout history. Everything is created through
// the service layer, so aggregates and notifications come out consistent.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"alcyxob/fitplanhub/internal/config"
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository/mongo"
	"alcyxob/fitplanhub/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := client.Database(cfg.Database.Name)
	slog.Info("clearing existing data", "database", cfg.Database.Name)
	if err := db.Drop(ctx); err != nil {
		slog.Error("failed to drop database", "error", err)
		os.Exit(1)
	}
	mongo.EnsureIndexes(ctx, db)

	userRepo := mongo.NewMongoUserRepository(db)
	followRepo := mongo.NewMongoFollowRepository(db)
	planRepo := mongo.NewMongoPlanRepository(db)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(db)
	reviewRepo := mongo.NewMongoReviewRepository(db)
	workoutLogRepo := mongo.NewMongoWorkoutLogRepository(db)
	tx := mongo.NewTransactor(client, cfg.Database.Transactions)

	notifications := service.NewNotificationService(mongo.NewMongoNotificationRepository(db), userRepo, nil)
	access := service.NewAccessPolicy(subscriptionRepo, userRepo)
	achievements := service.NewAchievementService(mongo.NewMongoAchievementRepository(db), workoutLogRepo, notifications)

	s := &seeder{
		auth:          service.NewAuthService(userRepo, followRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		plans:         service.NewPlanService(planRepo, reviewRepo, subscriptionRepo, followRepo, userRepo, access, notifications, nil),
		subscriptions: service.NewSubscriptionService(subscriptionRepo, planRepo, userRepo, tx, notifications),
		trainers:      service.NewTrainerService(userRepo, followRepo, planRepo, subscriptionRepo, access, notifications, cfg.Feed.PageSize),
		workoutLogs:   service.NewWorkoutLogService(workoutLogRepo, planRepo, achievements),
	}
	s.reviews = service.NewReviewService(reviewRepo, planRepo, subscriptionRepo, userRepo, tx, s.plans, notifications)

	if err := s.run(ctx); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	slog.Info("database seeded",
		"users", len(seedUsers),
		"trainers", len(seedTrainers),
		"plans", len(seedPlans),
		"subscriptions", s.subscriptionCount,
		"reviews", s.reviewCount,
		"workoutLogs", s.workoutLogCount,
	)
	for _, u := range seedUsers {
		slog.Info("user login", "email", u.email, "password", u.password)
	}
	for _, t := range seedTrainers {
		slog.Info("trainer login", "email", t.email, "password", t.password)
	}
}

type seeder struct {
	auth          service.AuthService
	plans         service.PlanService
	subscriptions service.SubscriptionService
	reviews       service.ReviewService
	trainers      service.TrainerService
	workoutLogs   service.WorkoutLogService

	subscriptionCount int
	reviewCount       int
	workoutLogCount   int
}

type subscribed struct {
	userID primitive.ObjectID
	planID primitive.ObjectID
}

func (s *seeder) run(ctx context.Context) error {
	users, err := s.register(ctx, seedUsers, domain.RoleUser)
	if err != nil {
		return err
	}
	trainers, err := s.register(ctx, seedTrainers, domain.RoleTrainer)
	if err != nil {
		return err
	}

	// Follows come first so plan creation fans out new_plan notifications.
	for _, userID := range users {
		for _, trainerID := range pick(trainers, rand.N(3)+1) {
			if err := s.trainers.Follow(ctx, userID, trainerID); err != nil {
				return err
			}
		}
	}

	planIDs := make([]primitive.ObjectID, 0, len(seedPlans))
	for i, p := range seedPlans {
		price := p.price
		plan, err := s.plans.Create(ctx, trainers[i%len(trainers)], service.PlanInput{
			Title:       p.title,
			Description: p.description,
			Price:       &price,
			Duration:    p.duration,
			Category:    p.category,
			Difficulty:  p.difficulty,
			Exercises:   p.exercises,
			Tags:        p.tags,
		})
		if err != nil {
			return err
		}
		planIDs = append(planIDs, plan.ID)
	}

	var subs []subscribed
	for _, userID := range users {
		for _, planID := range pick(planIDs, rand.N(3)+1) {
			if _, err := s.subscriptions.Subscribe(ctx, userID, planID); err != nil {
				return err
			}
			subs = append(subs, subscribed{userID: userID, planID: planID})
			s.subscriptionCount++
		}
	}

	for _, sub := range subs {
		if rand.Float64() > 0.3 {
			r := seedReviews[rand.N(len(seedReviews))]
			if _, err := s.reviews.Create(ctx, sub.userID, sub.planID, r.rating, r.comment); err != nil {
				return err
			}
			s.reviewCount++
		}
	}

	now := time.Now().UTC()
	for _, sub := range subs {
		for range rand.N(5) + 3 {
			_, err := s.workoutLogs.Create(ctx, sub.userID, service.WorkoutLogInput{
				PlanID:         sub.planID,
				Date:           now.AddDate(0, 0, -rand.N(20)),
				Exercises:      pick(seedExerciseResults, rand.N(3)+2),
				Duration:       rand.N(60) + 30,
				CaloriesBurned: rand.N(400) + 200,
				Notes:          "Great workout session! Feeling stronger every day.",
				Mood:           seedMoods[rand.N(len(seedMoods))],
			})
			if err != nil {
				return err
			}
			s.workoutLogCount++
		}
	}
	return nil
}

func (s *seeder) register(ctx context.Context, accounts []seedAccount, role domain.Role) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(accounts))
	for _, a := range accounts {
		_, user, err := s.auth.Register(ctx, service.RegisterInput{
			Name:           a.name,
			Email:          a.email,
			Password:       a.password,
			Role:           role,
			Certifications: a.certifications,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("created account", "email", user.Email, "role", user.Role)
		ids = append(ids, user.ID)
	}
	return ids, nil
}

// pick returns n distinct elements of items in random order.
func pick[T any](items []T, n int) []T {
	shuffled := append([]T(nil), items...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:min(n, len(shuffled))]
}

package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory implementations of the repository interfaces. They mirror the
// observable behavior of the MongoDB repositories (sentinel errors, ordering,
// unique constraints) closely enough for service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = *u
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeFollowRepo struct {
	follows []domain.Follow
}

func (r *fakeFollowRepo) Create(_ context.Context, f *domain.Follow) error {
	for _, existing := range r.follows {
		if existing.FollowerID == f.FollowerID && existing.TrainerID == f.TrainerID {
			return repository.ErrDuplicate
		}
	}
	f.ID = primitive.NewObjectID()
	r.follows = append(r.follows, *f)
	return nil
}

func (r *fakeFollowRepo) Delete(_ context.Context, followerID, trainerID primitive.ObjectID) error {
	for i, f := range r.follows {
		if f.FollowerID == followerID && f.TrainerID == trainerID {
			r.follows = append(r.follows[:i], r.follows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeFollowRepo) TrainerIDsFollowedBy(_ context.Context, followerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{}
	for _, f := range r.follows {
		if f.FollowerID == followerID {
			ids = append(ids, f.TrainerID)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) FollowersOf(_ context.Context, trainerID primitive.ObjectID) ([]domain.Follow, error) {
	out := []domain.Follow{}
	for _, f := range r.follows {
		if f.TrainerID == trainerID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakePlanRepo struct {
	plans map[primitive.ObjectID]domain.Plan
	clock *fakeClock
	// ratingDeltaErr makes ApplyRatingDelta fail, to exercise the repair path.
	ratingDeltaErr error
}

func (r *fakePlanRepo) Create(_ context.Context, p *domain.Plan) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.clock.tick()
	p.UpdatedAt = p.CreatedAt
	p.RatingSum, p.ReviewCount, p.AverageRating, p.SubscriberCount = 0, 0, 0, 0
	r.plans[p.ID] = clonePlan(*p)
	return p.ID, nil
}

func clonePlan(p domain.Plan) domain.Plan {
	p.Exercises = append([]domain.PlanExercise(nil), p.Exercises...)
	return p
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clonePlan(p)
	return &p, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (r *fakePlanRepo) List(_ context.Context, f repository.PlanFilter) ([]domain.Plan, error) {
	out := []domain.Plan{}
	if f.RestrictTrainers && len(f.TrainerIDs) == 0 {
		return out, nil
	}
	kw := strings.ToLower(strings.TrimSpace(f.Keyword))
	for _, p := range r.plans {
		switch {
		case len(f.IDs) > 0 && !containsID(f.IDs, p.ID):
			continue
		case len(f.TrainerIDs) > 0 && !containsID(f.TrainerIDs, p.TrainerID):
			continue
		case f.ActiveOnly && !p.IsActive:
			continue
		case f.Category != "" && p.Category != f.Category:
			continue
		case f.Difficulty != "" && p.Difficulty != f.Difficulty:
			continue
		case f.MinPrice != nil && p.Price < *f.MinPrice:
			continue
		case f.MaxPrice != nil && p.Price > *f.MaxPrice:
			continue
		case f.MinRating != nil && p.AverageRating < *f.MinRating:
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description+" "+strings.Join(p.Tags, " ")), kw) {
			continue
		}
		out = append(out, clonePlan(p))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch f.Sort {
		case repository.SortPriceLow:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case repository.SortPriceHigh:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case repository.SortRating:
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
		case repository.SortPopular:
			if a.SubscriberCount != b.SubscriberCount {
				return a.SubscriberCount > b.SubscriberCount
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakePlanRepo) Update(_ context.Context, p *domain.Plan) error {
	stored, ok := r.plans[p.ID]
	if !ok || stored.TrainerID != p.TrainerID {
		return repository.ErrNotFound
	}
	updated := clonePlan(*p)
	updated.RatingSum, updated.ReviewCount = stored.RatingSum, stored.ReviewCount
	updated.AverageRating, updated.SubscriberCount = stored.AverageRating, stored.SubscriberCount
	r.plans[p.ID] = updated
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, planID, trainerID primitive.ObjectID) error {
	p, ok := r.plans[planID]
	if !ok || p.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.plans, planID)
	return nil
}

func (r *fakePlanRepo) ApplyRatingDelta(_ context.Context, planID primitive.ObjectID, sumDelta, countDelta int) error {
	if r.ratingDeltaErr != nil {
		return r.ratingDeltaErr
	}
	p, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.RatingSum += sumDelta
	p.ReviewCount += countDelta
	p.AverageRating = domain.AverageRating(p.RatingSum, p.ReviewCount)
	r.plans[planID] = p
	return nil
}

func (r *fakePlanRepo) IncrementSubscribers(_ context.Context, planID primitive.ObjectID, delta int) error {
	p, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.SubscriberCount += delta
	r.plans[planID] = p
	return nil
}

func (r *fakePlanRepo) SetAggregates(_ context.Context, planID primitive.ObjectID, ratingSum, reviewCount, subscriberCount int) error {
	p, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	p.RatingSum, p.ReviewCount, p.SubscriberCount = ratingSum, reviewCount, subscriberCount
	p.AverageRating = domain.AverageRating(ratingSum, reviewCount)
	r.plans[planID] = p
	return nil
}

func (r *fakePlanRepo) SetExerciseVideoKey(_ context.Context, planID primitive.ObjectID, index int, key string) error {
	p, ok := r.plans[planID]
	if !ok || index < 0 || index >= len(p.Exercises) {
		return repository.ErrNotFound
	}
	p = clonePlan(p)
	p.Exercises[index].VideoKey = key
	r.plans[planID] = p
	return nil
}

type subscriptionPair struct {
	userID, planID primitive.ObjectID
}

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	subs   []domain.Subscription
	guards map[subscriptionPair]time.Time
	// createErr makes Create fail, to exercise the claim release.
	createErr error
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *domain.Subscription) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	s.ID = primitive.NewObjectID()
	r.subs = append(r.subs, *s)
	return s.ID, nil
}

func (r *fakeSubscriptionRepo) ClaimActive(_ context.Context, userID, planID primitive.ObjectID, now, until time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.guards == nil {
		r.guards = map[subscriptionPair]time.Time{}
	}
	key := subscriptionPair{userID, planID}
	if activeUntil, ok := r.guards[key]; ok && !activeUntil.Before(now) {
		return false, nil
	}
	r.guards[key] = until
	return true, nil
}

func (r *fakeSubscriptionRepo) ReleaseActive(_ context.Context, userID, planID primitive.ObjectID, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := subscriptionPair{userID, planID}
	if activeUntil, ok := r.guards[key]; ok && activeUntil.Equal(until) {
		r.guards[key] = time.Time{}
	}
	return nil
}

func (r *fakeSubscriptionRepo) HasActive(_ context.Context, userID, planID primitive.ObjectID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.UserID == userID && s.PlanID == planID && s.IsActive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubscriptionRepo) ActivePlanIDs(_ context.Context, userID primitive.ObjectID, planIDs []primitive.ObjectID, now time.Time) ([]primitive.ObjectID, error) {
	out := []primitive.ObjectID{}
	for _, s := range r.subs {
		if s.UserID == userID && containsID(planIDs, s.PlanID) && s.IsActive(now) && !containsID(out, s.PlanID) {
			out = append(out, s.PlanID)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Subscription, error) {
	out := []domain.Subscription{}
	for i := len(r.subs) - 1; i >= 0; i-- {
		if r.subs[i].UserID == userID {
			out = append(out, r.subs[i])
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) ListActiveByPlans(_ context.Context, planIDs []primitive.ObjectID, now time.Time) ([]domain.Subscription, error) {
	out := []domain.Subscription{}
	for _, s := range r.subs {
		if containsID(planIDs, s.PlanID) && s.IsActive(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) CountByPlan(_ context.Context, planID primitive.ObjectID) (int, error) {
	n := 0
	for _, s := range r.subs {
		if s.PlanID == planID {
			n++
		}
	}
	return n, nil
}

type fakeReviewRepo struct {
	reviews []domain.Review
	clock   *fakeClock
}

func (r *fakeReviewRepo) Create(_ context.Context, rv *domain.Review) (primitive.ObjectID, error) {
	for _, existing := range r.reviews {
		if existing.PlanID == rv.PlanID && existing.UserID == rv.UserID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	rv.ID = primitive.NewObjectID()
	rv.CreatedAt = r.clock.tick()
	rv.UpdatedAt = rv.CreatedAt
	r.reviews = append(r.reviews, *rv)
	return rv.ID, nil
}

func (r *fakeReviewRepo) find(match func(domain.Review) bool) (*domain.Review, error) {
	for _, rv := range r.reviews {
		if match(rv) {
			return &rv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReviewRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Review, error) {
	return r.find(func(rv domain.Review) bool { return rv.ID == id })
}

func (r *fakeReviewRepo) Update(_ context.Context, rv *domain.Review) error {
	for i := range r.reviews {
		if r.reviews[i].ID == rv.ID {
			r.reviews[i].Rating, r.reviews[i].Comment, r.reviews[i].UpdatedAt = rv.Rating, rv.Comment, rv.UpdatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range r.reviews {
		if r.reviews[i].ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeReviewRepo) ListByPlan(_ context.Context, planID primitive.ObjectID) ([]domain.Review, error) {
	out := []domain.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].PlanID == planID {
			out = append(out, r.reviews[i])
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) RatingTotals(_ context.Context, planID primitive.ObjectID) (int, int, error) {
	sum, count := 0, 0
	for _, rv := range r.reviews {
		if rv.PlanID == planID {
			sum += rv.Rating
			count++
		}
	}
	return sum, count, nil
}

type fakeWorkoutLogRepo struct {
	logs []domain.WorkoutLog
}

func (r *fakeWorkoutLogRepo) Create(_ context.Context, l *domain.WorkoutLog) (primitive.ObjectID, error) {
	l.ID = primitive.NewObjectID()
	r.logs = append(r.logs, *l)
	return l.ID, nil
}

func (r *fakeWorkoutLogRepo) List(_ context.Context, f repository.WorkoutLogFilter) ([]domain.WorkoutLog, error) {
	out := []domain.WorkoutLog{}
	for _, l := range r.logs {
		switch {
		case l.UserID != f.UserID:
			continue
		case f.PlanID != nil && l.PlanID != *f.PlanID:
			continue
		case f.From != nil && l.Date.Before(*f.From):
			continue
		case f.To != nil && l.Date.After(*f.To):
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeWorkoutLogRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	for i, l := range r.logs {
		if l.ID == id && l.UserID == userID {
			r.logs = append(r.logs[:i], r.logs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeWorkoutLogRepo) CountSince(_ context.Context, userID primitive.ObjectID, since time.Time) (int, error) {
	n := 0
	for _, l := range r.logs {
		if l.UserID == userID && !l.Date.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeWorkoutLogRepo) Stats(_ context.Context, userID primitive.ObjectID, now time.Time) (*domain.WorkoutStats, error) {
	stats := &domain.WorkoutStats{}
	week, month := now.Add(-7*24*time.Hour), now.Add(-30*24*time.Hour)
	for _, l := range r.logs {
		if l.UserID != userID {
			continue
		}
		stats.TotalWorkouts++
		stats.TotalDuration += l.Duration
		stats.TotalCalories += l.CaloriesBurned
		if !l.Date.Before(week) {
			stats.WorkoutsThisWeek++
		}
		if !l.Date.Before(month) {
			stats.WorkoutsThisMonth++
		}
	}
	if stats.TotalWorkouts > 0 {
		stats.AverageDuration = float64(stats.TotalDuration) / float64(stats.TotalWorkouts)
	}
	return stats, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	clock         *fakeClock
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.CreatedAt = r.clock.tick()
	r.notifications = append(r.notifications, *n)
	return n.ID, nil
}

func (r *fakeNotificationRepo) CreateMany(ctx context.Context, ns []domain.Notification) error {
	for i := range ns {
		if _, err := r.Create(ctx, &ns[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID == userID {
			out = append(out, r.notifications[i])
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

// forUser returns every notification of userID with the given type.
func (r *fakeNotificationRepo) forUser(userID primitive.ObjectID, typ domain.NotificationType) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAchievementRepo struct {
	achievements []domain.Achievement
	// awardErr makes AwardOnce fail.
	awardErr error
}

func (r *fakeAchievementRepo) AwardOnce(_ context.Context, a *domain.Achievement) (bool, error) {
	if r.awardErr != nil {
		return false, r.awardErr
	}
	for _, existing := range r.achievements {
		if existing.UserID == a.UserID && existing.Type == a.Type {
			return false, nil
		}
	}
	a.ID = primitive.NewObjectID()
	r.achievements = append(r.achievements, *a)
	return true, nil
}

func (r *fakeAchievementRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Achievement, error) {
	out := []domain.Achievement{}
	for i := len(r.achievements) - 1; i >= 0; i-- {
		if r.achievements[i].UserID == userID {
			out = append(out, r.achievements[i])
		}
	}
	return out, nil
}

// fakeTransactor runs fn directly, like the MongoDB transactor with transactions disabled.
type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeStorage struct {
	uploads   []string
	deleted   []string
	deleteErr error
}

func (s *fakeStorage) PresignUpload(_ context.Context, key, _ string) (string, error) {
	s.uploads = append(s.uploads, key)
	return "https://storage.test/put/" + key, nil
}

func (s *fakeStorage) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return s.deleteErr
}

// fakeClock is a settable clock. tick returns strictly increasing timestamps
// so that "newest first" orderings are deterministic.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks int
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.now.Add(time.Duration(c.ticks) * time.Millisecond)
}

// testEnv wires every service against the fakes with a shared clock.
type testEnv struct {
	clock *fakeClock

	users         *fakeUserRepo
	follows       *fakeFollowRepo
	plans         *fakePlanRepo
	subscriptions *fakeSubscriptionRepo
	reviews       *fakeReviewRepo
	workoutLogs   *fakeWorkoutLogRepo
	notifications *fakeNotificationRepo
	achievements  *fakeAchievementRepo
	tx            *fakeTransactor
	storage       *fakeStorage

	auth            AuthService
	access          AccessPolicy
	notificationSvc NotificationService
	planSvc         PlanService
	subscriptionSvc SubscriptionService
	reviewSvc       ReviewService
	achievementSvc  AchievementService
	workoutLogSvc   WorkoutLogService
	trainerSvc      TrainerService
}

const testJWTSecret = "test-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
	e := &testEnv{
		clock:         clock,
		users:         newFakeUserRepo(),
		follows:       &fakeFollowRepo{},
		plans:         &fakePlanRepo{plans: map[primitive.ObjectID]domain.Plan{}, clock: clock},
		subscriptions: &fakeSubscriptionRepo{},
		reviews:       &fakeReviewRepo{clock: clock},
		workoutLogs:   &fakeWorkoutLogRepo{},
		notifications: &fakeNotificationRepo{clock: clock},
		achievements:  &fakeAchievementRepo{},
		tx:            &fakeTransactor{},
		storage:       &fakeStorage{},
	}

	auth := NewAuthService(e.users, e.follows, testJWTSecret, time.Hour).(*authService)
	auth.now = clock.Now
	e.auth = auth

	access := NewAccessPolicy(e.subscriptions, e.users).(*accessPolicy)
	access.now = clock.Now
	e.access = access

	e.notificationSvc = NewNotificationService(e.notifications, e.users, nil)

	plans := NewPlanService(e.plans, e.reviews, e.subscriptions, e.follows, e.users, e.access, e.notificationSvc, e.storage).(*planService)
	plans.now = clock.Now
	e.planSvc = plans

	subs := NewSubscriptionService(e.subscriptions, e.plans, e.users, e.tx, e.notificationSvc).(*subscriptionService)
	subs.now = clock.Now
	e.subscriptionSvc = subs

	reviews := NewReviewService(e.reviews, e.plans, e.subscriptions, e.users, e.tx, e.planSvc, e.notificationSvc).(*reviewService)
	reviews.now = clock.Now
	e.reviewSvc = reviews

	achievements := NewAchievementService(e.achievements, e.workoutLogs, e.notificationSvc).(*achievementService)
	achievements.now = clock.Now
	e.achievementSvc = achievements

	logs := NewWorkoutLogService(e.workoutLogs, e.plans, e.achievementSvc).(*workoutLogService)
	logs.now = clock.Now
	e.workoutLogSvc = logs

	trainers := NewTrainerService(e.users, e.follows, e.plans, e.subscriptions, e.access, e.notificationSvc, 50).(*trainerService)
	trainers.now = clock.Now
	e.trainerSvc = trainers

	return e
}

func (e *testEnv) addUser(t *testing.T, name string, role domain.Role) domain.User {
	t.Helper()
	u := &domain.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if _, err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("add user %s: %v", name, err)
	}
	return *u
}

func (e *testEnv) addPlan(t *testing.T, trainer domain.User, title string, price float64, days int) domain.Plan {
	t.Helper()
	plan, err := e.planSvc.Create(context.Background(), trainer.ID, PlanInput{
		Title:       title,
		Description: title + " description",
		Price:       &price,
		Duration:    days,
		Exercises:   []domain.PlanExercise{{Name: "Squat", Sets: 3, Reps: 10}},
	})
	if err != nil {
		t.Fatalf("create plan %s: %v", title, err)
	}
	return *plan
}

func (e *testEnv) plan(t *testing.T, id primitive.ObjectID) domain.Plan {
	t.Helper()
	p, err := e.plans.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	return *p
}

// requireKind fails the test unless err is a service error of the given kind.
func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *service.Error of kind %v, got %v", want, err)
	}
	if svcErr.Kind != want {
		t.Fatalf("expected kind %v, got %v (%v)", want, svcErr.Kind, err)
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "handler-test-secret"

// Stubs embed the service interface; calling a method that a test did not
// provide panics, which gin turns into a 500.

type stubAuthService struct {
	service.AuthService
	register func(in service.RegisterInput) (string, *domain.User, error)
}

func (s *stubAuthService) Register(_ context.Context, in service.RegisterInput) (string, *domain.User, error) {
	return s.register(in)
}

type stubPlanService struct {
	service.PlanService
	get    func(viewerID, planID primitive.ObjectID) (*service.PlanView, error)
	search func(q service.SearchQuery) ([]service.PlanView, error)
	create func(trainerID primitive.ObjectID, in service.PlanInput) (*domain.Plan, error)
}

func (s *stubPlanService) Get(_ context.Context, viewerID, planID primitive.ObjectID) (*service.PlanView, error) {
	return s.get(viewerID, planID)
}

func (s *stubPlanService) Search(_ context.Context, _ primitive.ObjectID, q service.SearchQuery) ([]service.PlanView, error) {
	return s.search(q)
}

func (s *stubPlanService) Create(_ context.Context, trainerID primitive.ObjectID, in service.PlanInput) (*domain.Plan, error) {
	return s.create(trainerID, in)
}

type stubSubscriptionService struct {
	service.SubscriptionService
	subscribe func(userID, planID primitive.ObjectID) (*domain.Subscription, error)
}

func (s *stubSubscriptionService) Subscribe(_ context.Context, userID, planID primitive.ObjectID) (*domain.Subscription, error) {
	return s.subscribe(userID, planID)
}

type stubWorkoutLogService struct {
	service.WorkoutLogService
	list func(q service.WorkoutLogQuery) ([]service.WorkoutLogDetail, error)
}

func (s *stubWorkoutLogService) List(_ context.Context, _ primitive.ObjectID, q service.WorkoutLogQuery) ([]service.WorkoutLogDetail, error) {
	return s.list(q)
}

type stubTrainerService struct {
	service.TrainerService
	mySubscribers func(trainerID primitive.ObjectID) (*service.SubscriberReport, error)
}

func (s *stubTrainerService) MySubscribers(_ context.Context, trainerID primitive.ObjectID) (*service.SubscriberReport, error) {
	return s.mySubscribers(trainerID)
}

func newTestRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	deps.JWTSecret = testSecret
	router := gin.New()
	router.Use(RequestLogger(), gin.CustomRecovery(RecoveryHandler), CORSMiddleware([]string{"https://app.example.com"}))
	SetupRoutes(router, deps)
	return router
}

func testToken(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := &service.Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	router := newTestRouter(Dependencies{})

	rec, body := doRequest(t, router, http.MethodGet, "/api/plans", "", nil)
	if rec.Code != http.StatusUnauthorized || body["success"] != false {
		t.Fatalf("missing token: got %d %v", rec.Code, body)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/plans", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", rec.Code)
	}

	expired := &service.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(testSecret))
	rec, body = doRequest(t, router, http.MethodGet, "/api/plans", signed, nil)
	if rec.Code != http.StatusUnauthorized || body["message"] != "Token has expired" {
		t.Fatalf("expired token: got %d %v", rec.Code, body)
	}
}

func TestRoleMiddlewareForbidsWrongRole(t *testing.T) {
	router := newTestRouter(Dependencies{})
	userToken := testToken(t, primitive.NewObjectID(), domain.RoleUser)

	rec, body := doRequest(t, router, http.MethodPost, "/api/plans", userToken, map[string]any{"title": "x"})
	if rec.Code != http.StatusForbidden || body["success"] != false {
		t.Fatalf("user creating a plan: got %d %v", rec.Code, body)
	}

	trainerToken := testToken(t, primitive.NewObjectID(), domain.RoleTrainer)
	rec, _ = doRequest(t, router, http.MethodPost, "/api/subscriptions", trainerToken, map[string]any{"planId": primitive.NewObjectID().Hex()})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("trainer subscribing: got %d", rec.Code)
	}
}

func TestRegisterReportsFieldErrors(t *testing.T) {
	called := false
	router := newTestRouter(Dependencies{Auth: &stubAuthService{
		register: func(service.RegisterInput) (string, *domain.User, error) {
			called = true
			return "", nil, nil
		},
	}})

	rec, body := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Sam",
		"email":    "not-an-email",
		"password": "123",
		"role":     "admin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	fields, _ := body["errors"].(map[string]any)
	for _, f := range []string{"email", "password", "role"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected an error for %q, got %v", f, fields)
		}
	}
	if called {
		t.Fatal("service must not be called for invalid input")
	}
}

func TestRegisterMapsConflict(t *testing.T) {
	router := newTestRouter(Dependencies{Auth: &stubAuthService{
		register: func(service.RegisterInput) (string, *domain.User, error) {
			return "", nil, service.ErrUserAlreadyExists
		},
	}})

	rec, body := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Sam", "email": "sam@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusBadRequest || body["message"] != service.ErrUserAlreadyExists.Message {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}

func TestGetPlanRendersPreview(t *testing.T) {
	trainer := domain.User{ID: primitive.NewObjectID(), Name: "Tina", Email: "tina@example.com", PasswordHash: "hash"}
	plan := domain.Plan{
		ID:          primitive.NewObjectID(),
		Title:       "Shred",
		Description: "secret sauce",
		Price:       30,
		Duration:    30,
		TrainerID:   trainer.ID,
		Exercises:   []domain.PlanExercise{{Name: "Burpee"}},
	}
	preview := true
	router := newTestRouter(Dependencies{Plans: &stubPlanService{
		get: func(_, planID primitive.ObjectID) (*service.PlanView, error) {
			if planID != plan.ID {
				return nil, service.ErrPlanNotFound
			}
			kind := service.ViewFull
			if preview {
				kind = service.ViewPreview
			}
			return &service.PlanView{Kind: kind, Plan: plan, Trainer: &trainer}, nil
		},
	}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleUser)

	rec, body := doRequest(t, router, http.MethodGet, "/api/plans/"+plan.ID.Hex(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	if data["preview"] != true || data["message"] != service.ErrSubscriptionOnly.Message {
		t.Fatalf("expected a preview, got %v", data)
	}
	wantKeys := []string{"id", "title", "price", "duration", "trainer", "averageRating", "reviewCount", "subscriberCount", "preview", "message"}
	if len(data) != len(wantKeys) {
		t.Fatalf("preview has keys %v, want exactly %v", mapKeys(data), wantKeys)
	}
	for _, k := range wantKeys {
		if _, ok := data[k]; !ok {
			t.Fatalf("preview is missing %q, got keys %v", k, mapKeys(data))
		}
	}
	trainerRef := data["trainer"].(map[string]any)
	if trainerRef["name"] != "Tina" || trainerRef["passwordHash"] != nil {
		t.Fatalf("unexpected trainer reference %v", trainerRef)
	}

	preview = false
	_, body = doRequest(t, router, http.MethodGet, "/api/plans/"+plan.ID.Hex(), token, nil)
	data = body["data"].(map[string]any)
	if data["description"] != "secret sauce" || data["preview"] != nil {
		t.Fatalf("expected the full plan, got %v", data)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/plans/not-an-id", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", rec.Code)
	}
	rec, _ = doRequest(t, router, http.MethodGet, "/api/plans/"+primitive.NewObjectID().Hex(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown plan: status = %d, want 404", rec.Code)
	}
}

func TestSearchPassesFiltersAndCount(t *testing.T) {
	var got service.SearchQuery
	router := newTestRouter(Dependencies{Plans: &stubPlanService{
		search: func(q service.SearchQuery) ([]service.PlanView, error) {
			got = q
			return []service.PlanView{{Kind: service.ViewPreview, Plan: domain.Plan{ID: primitive.NewObjectID(), Title: "A"}}}, nil
		},
	}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleUser)

	rec, body := doRequest(t, router, http.MethodGet, "/api/plans/search?keyword=core&minPrice=5&maxPrice=20&sort=price_low", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	if got.Keyword != "core" || got.MinPrice == nil || *got.MinPrice != 5 || got.MaxPrice == nil || *got.MaxPrice != 20 || got.Sort != "price_low" {
		t.Fatalf("unexpected query %+v", got)
	}
	if body["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", body["count"])
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/plans/search?minPrice=cheap", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric price: status = %d, want 400", rec.Code)
	}
}

func TestCreatePlanAllowsFreePlans(t *testing.T) {
	var got service.PlanInput
	router := newTestRouter(Dependencies{Plans: &stubPlanService{
		create: func(trainerID primitive.ObjectID, in service.PlanInput) (*domain.Plan, error) {
			got = in
			return &domain.Plan{ID: primitive.NewObjectID(), TrainerID: trainerID, Title: in.Title, Price: *in.Price}, nil
		},
	}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleTrainer)

	rec, body := doRequest(t, router, http.MethodPost, "/api/plans", token, map[string]any{
		"title": "Free Week", "description": "d", "price": 0, "duration": 7,
		"exercises": []map[string]any{{"name": "Plank", "sets": 3}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	if got.Price == nil || *got.Price != 0 || len(got.Exercises) != 1 || got.Exercises[0].Name != "Plank" {
		t.Fatalf("unexpected input %+v", got)
	}

	rec, body = doRequest(t, router, http.MethodPost, "/api/plans", token, map[string]any{
		"title": "No Price", "description": "d", "duration": 7,
		"exercises": []map[string]any{{"sets": 3}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	fields := body["errors"].(map[string]any)
	if _, ok := fields["price"]; !ok {
		t.Errorf("expected a price error, got %v", fields)
	}
	if _, ok := fields["exercises[0].name"]; !ok {
		t.Errorf("expected an exercise name error, got %v", fields)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	var next error
	router := newTestRouter(Dependencies{Subscriptions: &stubSubscriptionService{
		subscribe: func(_, _ primitive.ObjectID) (*domain.Subscription, error) { return nil, next },
	}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleUser)
	body := map[string]any{"planId": primitive.NewObjectID().Hex()}

	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{service.ErrAlreadySubscribed, http.StatusBadRequest, service.ErrAlreadySubscribed.Message},
		{service.ErrPlanNotFound, http.StatusNotFound, service.ErrPlanNotFound.Message},
		{service.ErrPlanNotAvailable, http.StatusBadRequest, service.ErrPlanNotAvailable.Message},
		{errors.New("connection reset by peer"), http.StatusInternalServerError, internalErrorMessage},
	}
	for _, tt := range tests {
		next = tt.err
		rec, resp := doRequest(t, router, http.MethodPost, "/api/subscriptions", token, body)
		if rec.Code != tt.wantStatus || resp["message"] != tt.wantMsg {
			t.Errorf("%v: got %d %v, want %d %q", tt.err, rec.Code, resp["message"], tt.wantStatus, tt.wantMsg)
		}
	}

	rec, _ := doRequest(t, router, http.MethodPost, "/api/subscriptions", token, map[string]any{"planId": "xyz"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed planId: status = %d, want 400", rec.Code)
	}
}

func TestMySubscribersShape(t *testing.T) {
	planID := primitive.NewObjectID()
	emptyPlanID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	router := newTestRouter(Dependencies{Trainers: &stubTrainerService{
		mySubscribers: func(primitive.ObjectID) (*service.SubscriberReport, error) {
			return &service.SubscriberReport{
				TotalSubscribers:   1,
				TotalSubscriptions: 1,
				ByPlan: map[primitive.ObjectID]*service.PlanSubscribers{
					planID:      {PlanTitle: "Yoga", Subscribers: []service.Subscriber{{UserID: userID, Name: "Uma", Email: "uma@example.com", Amount: 15}}},
					emptyPlanID: {PlanTitle: "Empty", Subscribers: []service.Subscriber{}},
				},
			}, nil
		},
	}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleTrainer)

	rec, body := doRequest(t, router, http.MethodGet, "/api/trainers/my-subscribers", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	byPlan := data["subscribersByPlan"].(map[string]any)
	yoga := byPlan[planID.Hex()].(map[string]any)
	subs := yoga["subscribers"].([]any)
	if yoga["planTitle"] != "Yoga" || len(subs) != 1 || subs[0].(map[string]any)["userId"] != userID.Hex() {
		t.Fatalf("unexpected yoga group %v", yoga)
	}
	empty := byPlan[emptyPlanID.Hex()].(map[string]any)
	if subs, ok := empty["subscribers"].([]any); !ok || len(subs) != 0 {
		t.Fatalf("empty plan should render an empty list, got %v", empty)
	}
}

func TestWorkoutLogDateFilters(t *testing.T) {
	var got service.WorkoutLogQuery
	router := newTestRouter(Dependencies{WorkoutLogs: &stubWorkoutLogService{
		list: func(q service.WorkoutLogQuery) ([]service.WorkoutLogDetail, error) {
			got = q
			return nil, nil
		},
	}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleUser)

	rec, body := doRequest(t, router, http.MethodGet, "/api/workout-logs?startDate=2024-03-01&endDate=2024-03-07", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	wantFrom := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if got.From == nil || !got.From.Equal(wantFrom) || got.To == nil || !got.To.Equal(wantTo) {
		t.Fatalf("unexpected range %v - %v", got.From, got.To)
	}
	if data, ok := body["data"].([]any); !ok || len(data) != 0 {
		t.Fatalf("expected an empty list, got %v", body["data"])
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/workout-logs?startDate=2024-03-01", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("startDate alone: status = %d, want 400", rec.Code)
	}
	rec, _ = doRequest(t, router, http.MethodGet, "/api/workout-logs?startDate=yesterday&endDate=today", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad dates: status = %d, want 400", rec.Code)
	}
}

func TestHealthAndCORS(t *testing.T) {
	pingErr := error(nil)
	router := newTestRouter(Dependencies{Ping: func(context.Context) error { return pingErr }})

	rec, body := doRequest(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("healthy: got %d %v", rec.Code, body)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("responses must carry a request id")
	}

	pingErr = errors.New("no reachable servers")
	rec, _ = doRequest(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: status = %d, want 503", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/plans", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	pre := httptest.NewRecorder()
	router.ServeHTTP(pre, req)
	if pre.Code != http.StatusNoContent || pre.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("preflight: got %d %v", pre.Code, pre.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)
	if other.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origins must not be allowed")
	}
}

func TestPanicsUseErrorEnvelope(t *testing.T) {
	router := newTestRouter(Dependencies{Plans: &stubPlanService{}})
	token := testToken(t, primitive.NewObjectID(), domain.RoleUser)

	// the stub has no get func, so the handler panics
	rec, body := doRequest(t, router, http.MethodGet, "/api/plans/"+primitive.NewObjectID().Hex(), token, nil)
	if rec.Code != http.StatusInternalServerError || body["message"] != internalErrorMessage {
		t.Fatalf("got %d %v", rec.Code, body)
	}
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

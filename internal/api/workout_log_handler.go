package api

import (
	"net/http"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateOnlyLayout = "2006-01-02"

type WorkoutLogHandler struct {
	workoutLogService service.WorkoutLogService
}

func NewWorkoutLogHandler(workoutLogService service.WorkoutLogService) *WorkoutLogHandler {
	return &WorkoutLogHandler{workoutLogService: workoutLogService}
}

type ExerciseResultRequest struct {
	ExerciseName  string  `json:"exerciseName" binding:"required"`
	SetsCompleted int     `json:"setsCompleted" binding:"gte=0"`
	RepsCompleted int     `json:"repsCompleted" binding:"gte=0"`
	Weight        float64 `json:"weight" binding:"gte=0"`
	Notes         string  `json:"notes"`
}

type CreateWorkoutLogRequest struct {
	PlanID         string                  `json:"planId" binding:"required"`
	Date           *time.Time              `json:"date"`
	Exercises      []ExerciseResultRequest `json:"exercises" binding:"dive"`
	Duration       int                     `json:"duration" binding:"required,min=1"`
	CaloriesBurned int                     `json:"caloriesBurned" binding:"gte=0"`
	Notes          string                  `json:"notes" binding:"max=1000"`
	Mood           domain.Mood             `json:"mood" binding:"omitempty,oneof=excellent good average tired exhausted"`
}

type WorkoutLogQuery struct {
	PlanID    string `form:"planId"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

type WorkoutLogResponse struct {
	ID             string                  `json:"id"`
	PlanID         string                  `json:"planId"`
	PlanTitle      string                  `json:"planTitle,omitempty"`
	Date           time.Time               `json:"date"`
	Exercises      []domain.ExerciseResult `json:"exercises"`
	Duration       int                     `json:"duration"`
	CaloriesBurned int                     `json:"caloriesBurned"`
	Notes          string                  `json:"notes,omitempty"`
	Mood           domain.Mood             `json:"mood,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

type CreateWorkoutLogResponse struct {
	WorkoutLog      WorkoutLogResponse   `json:"workoutLog"`
	NewAchievements []domain.Achievement `json:"newAchievements"`
}

func mapWorkoutLog(l *domain.WorkoutLog, planTitle string) WorkoutLogResponse {
	exercises := l.Exercises
	if exercises == nil {
		exercises = []domain.ExerciseResult{}
	}
	return WorkoutLogResponse{
		ID:             l.ID.Hex(),
		PlanID:         l.PlanID.Hex(),
		PlanTitle:      planTitle,
		Date:           l.Date,
		Exercises:      exercises,
		Duration:       l.Duration,
		CaloriesBurned: l.CaloriesBurned,
		Notes:          l.Notes,
		Mood:           l.Mood,
		CreatedAt:      l.CreatedAt,
	}
}

// parseQueryDate accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseQueryDate(value string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// CreateWorkoutLog godoc
// @Summary Log a workout
// @Description Stores the workout and returns any achievements it unlocked.
// @Tags Workout Logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateWorkoutLogRequest true "Workout"
// @Success 201 {object} Envelope{data=CreateWorkoutLogResponse}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope "Plan not found"
// @Router /workout-logs [post]
func (h *WorkoutLogHandler) CreateWorkoutLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateWorkoutLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}

	in := service.WorkoutLogInput{
		PlanID:         planID,
		Duration:       req.Duration,
		CaloriesBurned: req.CaloriesBurned,
		Notes:          req.Notes,
		Mood:           req.Mood,
	}
	if req.Date != nil {
		in.Date = req.Date.UTC()
	}
	for _, ex := range req.Exercises {
		in.Exercises = append(in.Exercises, domain.ExerciseResult{
			ExerciseName:  ex.ExerciseName,
			SetsCompleted: ex.SetsCompleted,
			RepsCompleted: ex.RepsCompleted,
			Weight:        ex.Weight,
			Notes:         ex.Notes,
		})
	}

	result, err := h.workoutLogService.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	earned := result.NewAchievements
	if earned == nil {
		earned = []domain.Achievement{}
	}
	respondOK(c, http.StatusCreated, CreateWorkoutLogResponse{
		WorkoutLog:      mapWorkoutLog(&result.Log, ""),
		NewAchievements: earned,
	})
}

// ListWorkoutLogs godoc
// @Summary The caller's workout logs, newest first
// @Tags Workout Logs
// @Produce json
// @Security BearerAuth
// @Param planId query string false "Only logs of this plan"
// @Param startDate query string false "RFC 3339 or YYYY-MM-DD; requires endDate"
// @Param endDate query string false "RFC 3339 or YYYY-MM-DD; requires startDate"
// @Success 200 {object} Envelope{data=[]WorkoutLogResponse}
// @Failure 400 {object} Envelope
// @Router /workout-logs [get]
func (h *WorkoutLogHandler) ListWorkoutLogs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var q WorkoutLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBindingError(c, err)
		return
	}

	var query service.WorkoutLogQuery
	if q.PlanID != "" {
		planID, err := primitive.ObjectIDFromHex(q.PlanID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid planId format")
			return
		}
		query.PlanID = &planID
	}
	if (q.StartDate == "") != (q.EndDate == "") {
		abortWithError(c, http.StatusBadRequest, "startDate and endDate must be provided together")
		return
	}
	if q.StartDate != "" {
		from, okFrom := parseQueryDate(q.StartDate, false)
		to, okTo := parseQueryDate(q.EndDate, true)
		if !okFrom || !okTo {
			abortWithError(c, http.StatusBadRequest, "startDate and endDate must be RFC 3339 timestamps or YYYY-MM-DD dates")
			return
		}
		query.From, query.To = &from, &to
	}

	details, err := h.workoutLogService.List(c.Request.Context(), userID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]WorkoutLogResponse, len(details))
	for i := range details {
		out[i] = mapWorkoutLog(&details[i].Log, details[i].PlanTitle)
	}
	respondList(c, out, len(out))
}

// WorkoutStats godoc
// @Summary Workout totals for the caller
// @Tags Workout Logs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=domain.WorkoutStats}
// @Router /workout-logs/stats [get]
func (h *WorkoutLogHandler) WorkoutStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := h.workoutLogService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// DeleteWorkoutLog godoc
// @Summary Delete one of the caller's workout logs
// @Tags Workout Logs
// @Security BearerAuth
// @Param id path string true "Workout log ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /workout-logs/{id} [delete]
func (h *WorkoutLogHandler) DeleteWorkoutLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	logID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.workoutLogService.Delete(c.Request.Context(), userID, logID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Workout log deleted successfully")
}

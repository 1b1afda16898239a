package api

import (
	"net/http"
	"strconv"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Sets        int    `json:"sets" binding:"gte=0"`
	Reps        int    `json:"reps" binding:"gte=0"`
	Description string `json:"description" binding:"max=1000"`
}

type CreatePlanRequest struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Description string              `json:"description" binding:"required"`
	Price       *float64            `json:"price" binding:"required,gte=0"`
	Duration    int                 `json:"duration" binding:"required,min=1"`
	Category    domain.PlanCategory `json:"category" binding:"omitempty,oneof=strength cardio flexibility weight_loss muscle_gain endurance general"`
	Difficulty  domain.Difficulty   `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Exercises   []ExerciseRequest   `json:"exercises" binding:"dive"`
	Tags        []string            `json:"tags"`
	IsActive    *bool               `json:"isActive"`
}

// UpdatePlanRequest fields are all optional; omitted fields keep their value.
type UpdatePlanRequest struct {
	Title       string              `json:"title" binding:"max=200"`
	Description string              `json:"description"`
	Price       *float64            `json:"price" binding:"omitempty,gte=0"`
	Duration    int                 `json:"duration" binding:"omitempty,min=1"`
	Category    domain.PlanCategory `json:"category" binding:"omitempty,oneof=strength cardio flexibility weight_loss muscle_gain endurance general"`
	Difficulty  domain.Difficulty   `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Exercises   []ExerciseRequest   `json:"exercises" binding:"omitempty,dive"`
	Tags        []string            `json:"tags"`
	IsActive    *bool               `json:"isActive"`
}

type SearchPlansQuery struct {
	Keyword    string              `form:"keyword"`
	Category   domain.PlanCategory `form:"category"`
	Difficulty domain.Difficulty   `form:"difficulty"`
	MinPrice   *float64            `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice   *float64            `form:"maxPrice" binding:"omitempty,gte=0"`
	MinRating  *float64            `form:"minRating" binding:"omitempty,gte=0,lte=5"`
	Sort       repository.PlanSort `form:"sort"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type VideoUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VideoURLResponse struct {
	URL string `json:"url"`
}

func exercisesFromRequest(reqs []ExerciseRequest) []domain.PlanExercise {
	if reqs == nil {
		return nil
	}
	out := make([]domain.PlanExercise, len(reqs))
	for i, r := range reqs {
		out[i] = domain.PlanExercise{Name: r.Name, Sets: r.Sets, Reps: r.Reps, Description: r.Description}
	}
	return out
}

// --- Handlers ---

// CreatePlan godoc
// @Summary Create a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan"
// @Success 201 {object} Envelope{data=PlanResponse}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope "Not a trainer"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), trainerID, service.PlanInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Exercises:   exercisesFromRequest(req.Exercises),
		Tags:        req.Tags,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, mapPlan(plan, nil))
}

// UpdatePlan godoc
// @Summary Update one of the caller's plans
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body UpdatePlanRequest true "Fields to change"
// @Success 200 {object} Envelope{data=PlanResponse}
// @Failure 404 {object} Envelope "Plan not found or not owned"
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), trainerID, planID, service.PlanInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Exercises:   exercisesFromRequest(req.Exercises),
		Tags:        req.Tags,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, mapPlan(plan, nil))
}

// DeletePlan godoc
// @Summary Delete one of the caller's plans
// @Tags Plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.planService.Delete(c.Request.Context(), trainerID, planID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Plan deleted successfully")
}

// GetPlan godoc
// @Summary Plan detail
// @Description Full plan for its owner and active subscribers, a preview for everyone else.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} Envelope{data=PlanResponse}
// @Failure 404 {object} Envelope
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.planService.Get(c.Request.Context(), viewerID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, mapPlanView(*view))
}

// ListPlans godoc
// @Summary Active plans, newest first
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	views, err := h.planService.ListActive(c.Request.Context(), viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, mapPlanViews(views), len(views))
}

// SearchPlans godoc
// @Summary Search active plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Matches title, description and tags"
// @Param category query string false "Category"
// @Param difficulty query string false "Difficulty"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minRating query number false "Minimum average rating"
// @Param sort query string false "newest, price_low, price_high, rating or popular"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /plans/search [get]
func (h *PlanHandler) SearchPlans(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	var q SearchPlansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithBindingError(c, err)
		return
	}

	views, err := h.planService.Search(c.Request.Context(), viewerID, service.SearchQuery{
		Keyword:    q.Keyword,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		MinRating:  q.MinRating,
		Sort:       q.Sort,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, mapPlanViews(views), len(views))
}

// MyPlans godoc
// @Summary The caller's own plans, including inactive ones
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /plans/my-plans [get]
func (h *PlanHandler) MyPlans(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	views, err := h.planService.ListMine(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, mapPlanViews(views), len(views))
}

func exerciseIndexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise index")
		return 0, false
	}
	return index, true
}

// CreateExerciseVideoUpload godoc
// @Summary Presigned upload URL for an exercise video
// @Description The returned URL accepts a single PUT of the video with the given content type.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param index path int true "Exercise index"
// @Param body body VideoUploadRequest true "Content type"
// @Success 200 {object} Envelope{data=VideoUploadResponse}
// @Failure 404 {object} Envelope
// @Router /plans/{id}/exercises/{index}/video [post]
func (h *PlanHandler) CreateExerciseVideoUpload(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	index, ok := exerciseIndexParam(c)
	if !ok {
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}

	upload, err := h.planService.CreateVideoUploadURL(c.Request.Context(), trainerID, planID, index, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, VideoUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresAt: upload.ExpiresAt,
	})
}

// GetExerciseVideo godoc
// @Summary Presigned download URL for an exercise video
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param index path int true "Exercise index"
// @Success 200 {object} Envelope{data=VideoURLResponse}
// @Failure 403 {object} Envelope "No active subscription"
// @Failure 404 {object} Envelope
// @Router /plans/{id}/exercises/{index}/video [get]
func (h *PlanHandler) GetExerciseVideo(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	index, ok := exerciseIndexParam(c)
	if !ok {
		return
	}

	url, err := h.planService.GetVideoURL(c.Request.Context(), viewerID, planID, index)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, VideoURLResponse{URL: url})
}

package api

import (
	"net/http"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type CreateReviewRequest struct {
	PlanID  string `json:"planId" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

type ReviewResponse struct {
	ID                 string    `json:"id"`
	PlanID             string    `json:"planId"`
	UserID             string    `json:"userId"`
	UserName           string    `json:"userName,omitempty"`
	Rating             int       `json:"rating"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"isVerifiedPurchase"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func mapReview(r *domain.Review, authorName string) ReviewResponse {
	return ReviewResponse{
		ID:                 r.ID.Hex(),
		PlanID:             r.PlanID.Hex(),
		UserID:             r.UserID.Hex(),
		UserName:           authorName,
		Rating:             r.Rating,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// CreateReview godoc
// @Summary Review a plan
// @Description One review per account and plan. Verified when the author has an active subscription.
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateReviewRequest true "Review"
// @Success 201 {object} Envelope{data=ReviewResponse}
// @Failure 400 {object} Envelope "Validation error or already reviewed"
// @Failure 404 {object} Envelope "Plan not found"
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}

	detail, err := h.reviewService.Create(c.Request.Context(), userID, planID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, mapReview(&detail.Review, detail.AuthorName))
}

// PlanReviews godoc
// @Summary Reviews of a plan, newest first
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} Envelope{data=[]ReviewResponse}
// @Router /reviews/plan/{planId} [get]
func (h *ReviewHandler) PlanReviews(c *gin.Context) {
	planID, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	details, err := h.reviewService.ListByPlan(c.Request.Context(), planID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]ReviewResponse, len(details))
	for i := range details {
		out[i] = mapReview(&details[i].Review, details[i].AuthorName)
	}
	respondList(c, out, len(out))
}

// UpdateReview godoc
// @Summary Update the caller's review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param body body UpdateReviewRequest true "New rating and/or comment"
// @Success 200 {object} Envelope{data=ReviewResponse}
// @Failure 404 {object} Envelope
// @Router /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, mapReview(review, ""))
}

// DeleteReview godoc
// @Summary Delete the caller's review
// @Tags Reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Review deleted successfully")
}

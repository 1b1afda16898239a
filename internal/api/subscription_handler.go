package api

import (
	"net/http"
	"time"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

type SubscribeRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type SubscriptionResponse struct {
	ID            string               `json:"id"`
	PlanID        string               `json:"planId"`
	Plan          *PlanResponse        `json:"plan,omitempty"`
	Trainer       *TrainerRef          `json:"trainer,omitempty"`
	StartDate     time.Time            `json:"startDate"`
	EndDate       time.Time            `json:"endDate"`
	Amount        float64              `json:"amount"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	IsActive      bool                 `json:"isActive"`
}

func mapSubscription(s *domain.Subscription, active bool) SubscriptionResponse {
	return SubscriptionResponse{
		ID:            s.ID.Hex(),
		PlanID:        s.PlanID.Hex(),
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		Amount:        s.Amount,
		PaymentStatus: s.PaymentStatus,
		IsActive:      active,
	}
}

// Subscribe godoc
// @Summary Subscribe to a plan
// @Description Creates a completed subscription lasting the plan's duration.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubscribeRequest true "Plan to subscribe to"
// @Success 201 {object} Envelope{data=SubscriptionResponse}
// @Failure 404 {object} Envelope "Plan not found"
// @Failure 400 {object} Envelope "Already subscribed"
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindingError(c, err)
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, mapSubscription(sub, true))
}

// MySubscriptions godoc
// @Summary The caller's subscriptions
// @Description Newest first, with plan, trainer and whether each is still active.
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=[]SubscriptionResponse}
// @Router /subscriptions [get]
func (h *SubscriptionHandler) MySubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	details, err := h.subscriptionService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]SubscriptionResponse, len(details))
	for i := range details {
		d := &details[i]
		out[i] = mapSubscription(&d.Subscription, d.IsActive)
		if d.Plan != nil {
			plan := mapPlan(d.Plan, d.Trainer)
			out[i].Plan = &plan
		}
		out[i].Trainer = mapTrainerRef(d.Trainer)
	}
	respondList(c, out, len(out))
}

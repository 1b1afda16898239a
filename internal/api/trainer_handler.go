// internal/api/trainer_handler.go
package api

import (
	"net/http"
	"time"

	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs ---

type TrainerDetailResponse struct {
	UserResponse
	Plans []any `json:"plans"`
}

type FollowerResponse struct {
	UserResponse
	FollowedAt time.Time `json:"followedAt"`
}

type SubscriberResponse struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Amount    float64   `json:"amount"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type PlanSubscribersResponse struct {
	PlanTitle   string               `json:"planTitle"`
	Subscribers []SubscriberResponse `json:"subscribers"`
}

type SubscriberReportResponse struct {
	TotalSubscribers   int                                `json:"totalSubscribers"`
	TotalSubscriptions int                                `json:"totalSubscriptions"`
	SubscribersByPlan  map[string]PlanSubscribersResponse `json:"subscribersByPlan"`
}

// --- Handlers ---

// ListTrainers godoc
// @Summary All trainers
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=[]UserResponse}
// @Router /trainers [get]
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.trainerService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, MapUsersToResponse(trainers), len(trainers))
}

// GetTrainer godoc
// @Summary Trainer profile with their active plans
// @Description Plans are previews unless the caller owns or is subscribed to them.
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} Envelope{data=TrainerDetailResponse}
// @Failure 404 {object} Envelope
// @Router /trainers/{id} [get]
func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainerID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.trainerService.Get(c.Request.Context(), viewerID, trainerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, TrainerDetailResponse{
		UserResponse: MapUserToResponse(&detail.Trainer),
		Plans:        mapPlanViews(detail.Plans),
	})
}

// FollowTrainer godoc
// @Summary Follow a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope "Cannot follow yourself or already following"
// @Failure 404 {object} Envelope "Trainer not found"
// @Router /trainers/{id}/follow [post]
func (h *TrainerHandler) FollowTrainer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainerID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.trainerService.Follow(c.Request.Context(), userID, trainerID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Successfully followed trainer")
}

// UnfollowTrainer godoc
// @Summary Unfollow a trainer
// @Tags Trainers
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} Envelope
// @Router /trainers/{id}/unfollow [delete]
func (h *TrainerHandler) UnfollowTrainer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainerID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.trainerService.Unfollow(c.Request.Context(), userID, trainerID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Successfully unfollowed trainer")
}

// FollowedTrainers godoc
// @Summary Trainers the caller follows
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=[]UserResponse}
// @Router /trainers/followed [get]
func (h *TrainerHandler) FollowedTrainers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trainers, err := h.trainerService.Followed(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, MapUsersToResponse(trainers), len(trainers))
}

// Feed godoc
// @Summary Newest active plans of followed trainers
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /trainers/feed [get]
func (h *TrainerHandler) Feed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	views, err := h.trainerService.Feed(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, mapPlanViews(views), len(views))
}

// MyFollowers godoc
// @Summary Accounts following the calling trainer, newest first
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=[]FollowerResponse}
// @Failure 403 {object} Envelope "Not a trainer"
// @Router /trainers/my-followers [get]
func (h *TrainerHandler) MyFollowers(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	followers, err := h.trainerService.MyFollowers(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]FollowerResponse, len(followers))
	for i := range followers {
		out[i] = FollowerResponse{
			UserResponse: MapUserToResponse(&followers[i].User),
			FollowedAt:   followers[i].FollowedAt,
		}
	}
	respondList(c, out, len(out))
}

// MySubscribers godoc
// @Summary Active subscribers of the calling trainer, grouped by plan
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=SubscriberReportResponse}
// @Failure 403 {object} Envelope "Not a trainer"
// @Router /trainers/my-subscribers [get]
func (h *TrainerHandler) MySubscribers(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	report, err := h.trainerService.MySubscribers(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err)
		return
	}

	byPlan := make(map[string]PlanSubscribersResponse, len(report.ByPlan))
	for planID, group := range report.ByPlan {
		subs := make([]SubscriberResponse, len(group.Subscribers))
		for i, s := range group.Subscribers {
			subs[i] = SubscriberResponse{
				UserID:    s.UserID.Hex(),
				Name:      s.Name,
				Email:     s.Email,
				Amount:    s.Amount,
				StartDate: s.StartDate,
				EndDate:   s.EndDate,
			}
		}
		byPlan[planID.Hex()] = PlanSubscribersResponse{PlanTitle: group.PlanTitle, Subscribers: subs}
	}
	respondOK(c, http.StatusOK, SubscriberReportResponse{
		TotalSubscribers:   report.TotalSubscribers,
		TotalSubscriptions: report.TotalSubscriptions,
		SubscribersByPlan:  byPlan,
	})
}

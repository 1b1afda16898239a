package api

import (
	"net/http"

	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	achievementService  service.AchievementService
}

func NewNotificationHandler(notificationService service.NotificationService, achievementService service.AchievementService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		achievementService:  achievementService,
	}
}

type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// ListNotifications godoc
// @Summary Latest notifications of the caller
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=NotificationListResponse}
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	notifications := list.Notifications
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	respondOK(c, http.StatusOK, NotificationListResponse{Notifications: notifications, UnreadCount: list.UnreadCount})
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Notification marked as read")
}

// MarkAllRead godoc
// @Summary Mark every notification of the caller as read
// @Tags Notifications
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "All notifications marked as read")
}

// DeleteNotification godoc
// @Summary Delete one notification
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Notification deleted")
}

// ListAchievements godoc
// @Summary Badges earned by the caller, newest first
// @Tags Achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=[]domain.Achievement}
// @Router /achievements [get]
func (h *NotificationHandler) ListAchievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	achievements, err := h.achievementService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if achievements == nil {
		achievements = []domain.Achievement{}
	}
	respondList(c, achievements, len(achievements))
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// List the caller's notifications
// (GET /api/notifications)
func (impl *ServerImpl) GetNotifications(c *gin.Context) {
	const op = "GetNotifications"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	notifications, err := impl.market.ListNotifications(c.Request.Context(), actorID)
	if err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	views := make([]notificationView, len(notifications))
	for i, notification := range notifications {
		views[i] = newNotificationView(notification)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"items": views,
	})
}

// Mark one notification as read
// (POST /api/notifications/:notificationID/read)
func (impl *ServerImpl) PostNotificationRead(c *gin.Context) {
	const op = "PostNotificationRead"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	notificationID, ok := parseUUIDParam(c, "notificationID")
	if !ok {
		return
	}
	if err := impl.market.MarkNotificationRead(c.Request.Context(), actorID, notificationID); err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Mark all of the caller's notifications as read
// (POST /api/notifications/read-all)
func (impl *ServerImpl) PostNotificationsReadAll(c *gin.Context) {
	const op = "PostNotificationsReadAll"
	_, actorID, ok := impl.requireAuth(c)
	if !ok {
		return
	}
	if err := impl.market.MarkAllNotificationsRead(c.Request.Context(), actorID); err != nil {
		abortWithDomainError(c, op, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package controllers

import (
	"net/http"

	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ConnectionController struct {
	connections   *services.ConnectionService
	notifications *services.NotificationService
	log           logrus.FieldLogger
}

func NewConnectionController(connections *services.ConnectionService, notifications *services.NotificationService, log logrus.FieldLogger) *ConnectionController {
	return &ConnectionController{connections: connections, notifications: notifications, log: log}
}

// SendRequest godoc
// @Summary Send a connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param receiver_id path int true "Receiver ID"
// @Success 201 {object} map[string]interface{} "Connection request sent"
// @Failure 400 {object} map[string]string "Cannot send a request to yourself"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "Request already sent or already connected"
// @Router /api/connections/request/{receiver_id} [post]
func (cc *ConnectionController) SendRequest(c *gin.Context) {
	receiverID, ok := idParam(c, "receiver_id")
	if !ok {
		return
	}

	req, err := cc.connections.SendRequest(c.Request.Context(), middleware.CurrentUser(c), receiverID)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Connection request sent", "request_id": req.ID})
}

// Accept godoc
// @Summary Accept a connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param request_id path int true "Request ID"
// @Success 200 {object} map[string]string "Request accepted"
// @Failure 400 {object} map[string]string "Request already processed"
// @Failure 404 {object} map[string]string "Request not found"
// @Router /api/connections/accept/{request_id} [put]
func (cc *ConnectionController) Accept(c *gin.Context) {
	requestID, ok := idParam(c, "request_id")
	if !ok {
		return
	}
	if err := cc.connections.AcceptRequest(c.Request.Context(), requestID, middleware.CurrentUser(c)); err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// Reject godoc
// @Summary Reject a connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param request_id path int true "Request ID"
// @Success 200 {object} map[string]string "Request rejected"
// @Failure 400 {object} map[string]string "Request already processed"
// @Failure 404 {object} map[string]string "Request not found"
// @Router /api/connections/reject/{request_id} [put]
func (cc *ConnectionController) Reject(c *gin.Context) {
	requestID, ok := idParam(c, "request_id")
	if !ok {
		return
	}
	if err := cc.connections.RejectRequest(c.Request.Context(), requestID, middleware.CurrentUser(c)); err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}

// Notifications godoc
// @Summary List notifications
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /api/connections/notifications [get]
func (cc *ConnectionController) Notifications(c *gin.Context) {
	notifications, err := cc.notifications.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead godoc
// @Summary Mark a notification as read
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param notification_id path int true "Notification ID"
// @Success 200 {object} map[string]string "marked as read"
// @Failure 404 {object} map[string]string "Notification not found"
// @Router /api/connections/notifications/{notification_id}/read [put]
func (cc *ConnectionController) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := idParam(c, "notification_id")
	if !ok {
		return
	}
	if err := cc.notifications.MarkRead(c.Request.Context(), notificationID, middleware.CurrentUser(c).ID); err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "marked as read"})
}

// Friends godoc
// @Summary List friends
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserSummary
// @Router /api/connections/friends [get]
func (cc *ConnectionController) Friends(c *gin.Context) {
	friends, err := cc.connections.Friends(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

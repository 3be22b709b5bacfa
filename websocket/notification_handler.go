package websocket

import (
	"context"
	"time"

	"github.com/CUknot/social_backend/metrics"
	"github.com/CUknot/social_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UnreadNotifications interface {
	Unread(ctx context.Context, userID uint) ([]models.Notification, error)
}

// NotificationHandler pushes the unread notification set of a user on a
// fixed interval
type NotificationHandler struct {
	auth          Authenticator
	notifications UnreadNotifications
	interval      time.Duration
	metrics       *metrics.Metrics
	log           logrus.FieldLogger
}

func NewNotificationHandler(auth Authenticator, notifications UnreadNotifications, interval time.Duration, m *metrics.Metrics, log logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{
		auth:          auth,
		notifications: notifications,
		interval:      interval,
		metrics:       m,
		log:           log,
	}
}

type relatedUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type notificationFrame struct {
	ID          uint         `json:"id"`
	Message     string       `json:"message"`
	Type        string       `json:"type"`
	CreatedAt   time.Time    `json:"created_at"`
	RelatedUser *relatedUser `json:"related_user"`
}

// Stream godoc
// @Summary Notification socket
// @Description Upgrades to a websocket that periodically pushes the unread notifications as a JSON array
// @Tags connections
// @Param token query string true "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/connections/ws/notifications [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	conn, user := accept(c, h.auth, h.log)
	if conn == nil {
		return
	}
	ctx := c.Request.Context()
	log := h.log.WithField("user_id", user.ID)

	client := newClient(conn, user.ID, h.log)
	go client.writePump()
	go client.readPump(func([]byte) bool { return true })
	log.Info("Notification stream connected")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if !h.push(ctx, client, log) {
			client.close()
			break
		}

		select {
		case <-client.done:
			log.Info("Notification stream disconnected")
			return
		case <-ticker.C:
		}
	}
	log.Info("Notification stream closed")
}

// push sends the unread set when it is not empty. It reports false once the
// client stopped accepting frames.
func (h *NotificationHandler) push(ctx context.Context, client *Client, log logrus.FieldLogger) bool {
	unread, err := h.notifications.Unread(ctx, client.UserID())
	if err != nil {
		log.WithError(err).Error("Failed to load unread notifications")
		return true
	}
	if len(unread) == 0 {
		return true
	}

	frames := make([]notificationFrame, 0, len(unread))
	for _, n := range unread {
		frame := notificationFrame{
			ID:        n.ID,
			Message:   n.Message,
			Type:      n.Type,
			CreatedAt: n.CreatedAt.UTC(),
		}
		if n.RelatedUser != nil {
			frame.RelatedUser = &relatedUser{ID: n.RelatedUser.ID, Email: n.RelatedUser.Email}
		}
		frames = append(frames, frame)
	}

	if !client.sendJSON(frames) {
		return false
	}
	h.metrics.NotificationPushes.Inc()
	return true
}

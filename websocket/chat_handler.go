package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/CUknot/social_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Connections interface {
	AreConnected(ctx context.Context, a, b uint) (bool, error)
}

type Memberships interface {
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
}

type MessageStore interface {
	SaveDirect(ctx context.Context, senderID, receiverID uint, content string) (*models.DirectMessage, error)
	SaveGroup(ctx context.Context, groupID, senderID uint, content string) (*models.GroupMessage, error)
}

// ChatHandler serves the direct and group chat sockets
type ChatHandler struct {
	registry    *Registry
	auth        Authenticator
	connections Connections
	groups      Memberships
	messages    MessageStore
	log         logrus.FieldLogger
}

func NewChatHandler(registry *Registry, auth Authenticator, connections Connections, groups Memberships, messages MessageStore, log logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{
		registry:    registry,
		auth:        auth,
		connections: connections,
		groups:      groups,
		messages:    messages,
		log:         log,
	}
}

type inbound struct {
	Message *string `json:"message"`
}

type directFrame struct {
	SenderID  uint      `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}

type groupFrame struct {
	SenderID    uint      `json:"sender_id"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	SenderEmail string    `json:"sender_email"`
}

// parseInbound extracts the message text. ok is false for malformed frames.
func parseInbound(data []byte) (string, bool) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil || in.Message == nil {
		return "", false
	}
	if strings.TrimSpace(*in.Message) == "" {
		return "", false
	}
	return *in.Message, true
}

// DirectChat godoc
// @Summary Direct chat socket
// @Description Upgrades to a websocket for chatting with a friend. Send {"message": "..."} frames.
// @Tags chat
// @Param friend_id path int true "Friend ID"
// @Param token query string true "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/chat/ws/chat/{friend_id} [get]
func (h *ChatHandler) DirectChat(c *gin.Context) {
	friendID, validID := parseID(c, "friend_id")

	conn, user := accept(c, h.auth, h.log)
	if conn == nil {
		return
	}
	ctx := c.Request.Context()
	log := h.log.WithFields(logrus.Fields{"user_id": user.ID, "friend_id": friendID})

	if !validID {
		refuse(conn, websocket.ClosePolicyViolation, "Invalid friend id")
		conn.Close()
		return
	}
	connected, err := h.connections.AreConnected(ctx, user.ID, friendID)
	if err != nil || !connected {
		if err != nil {
			log.WithError(err).Error("Failed to check connection")
		}
		refuse(conn, websocket.ClosePolicyViolation, "Not connected with this user")
		conn.Close()
		return
	}

	client := newClient(conn, user.ID, h.log)
	key := DirectRoom(user.ID, friendID)
	h.registry.Join(key, client)
	defer h.registry.Leave(key, client)
	log.Info("Direct chat connected")

	go client.writePump()
	client.readPump(func(data []byte) bool {
		content, ok := parseInbound(data)
		if !ok {
			client.sendError("Expected a JSON object with a non-empty \"message\" string")
			return true
		}

		connected, err := h.connections.AreConnected(ctx, user.ID, friendID)
		if err != nil {
			log.WithError(err).Error("Failed to check connection")
			client.sendError("Failed to send message")
			return true
		}
		if !connected {
			client.closeWith(websocket.ClosePolicyViolation, "Not connected with this user")
			return false
		}

		_, err = h.registry.Publish(key, client, func() ([]byte, error) {
			msg, err := h.messages.SaveDirect(ctx, user.ID, friendID, content)
			if err != nil {
				return nil, err
			}
			return json.Marshal(directFrame{
				SenderID:  msg.SenderID,
				Content:   msg.Content,
				Timestamp: msg.Timestamp.UTC(),
				IsRead:    msg.IsRead,
			})
		})
		return h.afterPublish(client, log, err)
	})
	log.Info("Direct chat disconnected")
}

// GroupChat godoc
// @Summary Group chat socket
// @Description Upgrades to a websocket for chatting in a group. Send {"message": "..."} frames.
// @Tags chat
// @Param group_id path int true "Group ID"
// @Param token query string true "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/chat/ws/groups/{group_id} [get]
func (h *ChatHandler) GroupChat(c *gin.Context) {
	groupID, validID := parseID(c, "group_id")

	conn, user := accept(c, h.auth, h.log)
	if conn == nil {
		return
	}
	ctx := c.Request.Context()
	log := h.log.WithFields(logrus.Fields{"user_id": user.ID, "group_id": groupID})

	if !validID {
		refuse(conn, websocket.ClosePolicyViolation, "Invalid group id")
		conn.Close()
		return
	}
	member, err := h.groups.IsMember(ctx, groupID, user.ID)
	if err != nil || !member {
		if err != nil {
			log.WithError(err).Error("Failed to check membership")
		}
		refuse(conn, websocket.ClosePolicyViolation, "Not a group member")
		conn.Close()
		return
	}

	client := newClient(conn, user.ID, h.log)
	key := GroupRoom(groupID)
	h.registry.Join(key, client)
	defer h.registry.Leave(key, client)
	log.Info("Group chat connected")

	go client.writePump()
	client.readPump(func(data []byte) bool {
		content, ok := parseInbound(data)
		if !ok {
			client.sendError("Expected a JSON object with a non-empty \"message\" string")
			return true
		}

		_, err := h.registry.Publish(key, client, func() ([]byte, error) {
			msg, err := h.messages.SaveGroup(ctx, groupID, user.ID, content)
			if err != nil {
				return nil, err
			}
			return json.Marshal(groupFrame{
				SenderID:    msg.SenderID,
				Content:     msg.Content,
				Timestamp:   msg.Timestamp.UTC(),
				SenderEmail: user.Email,
			})
		})
		return h.afterPublish(client, log, err)
	})
	log.Info("Group chat disconnected")
}

// afterPublish reports whether the read loop should continue
func (h *ChatHandler) afterPublish(client *Client, log logrus.FieldLogger, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotRegistered):
		// evicted while reading
		return false
	default:
		log.WithError(err).Error("Failed to persist message")
		client.sendError("Failed to send message")
		return true
	}
}

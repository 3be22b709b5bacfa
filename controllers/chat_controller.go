package controllers

import (
	"net/http"

	"github.com/CUknot/social_backend/middleware"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ChatController struct {
	messages *services.MessageService
	log      logrus.FieldLogger
}

func NewChatController(messages *services.MessageService, log logrus.FieldLogger) *ChatController {
	return &ChatController{messages: messages, log: log}
}

// History godoc
// @Summary Direct chat history with a friend
// @Description Messages in the order they were sent
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param friend_id path int true "Friend ID"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(50)
// @Success 200 {array} models.DirectMessage
// @Failure 403 {object} map[string]string "Not connected with this user"
// @Router /api/chat/history/{friend_id} [get]
func (cc *ChatController) History(c *gin.Context) {
	friendID, ok := idParam(c, "friend_id")
	if !ok {
		return
	}
	page, ok := pageQuery(c, cc.log, services.DefaultPageSize)
	if !ok {
		return
	}

	messages, err := cc.messages.DirectHistory(c.Request.Context(), middleware.CurrentUser(c).ID, friendID, page)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// All godoc
// @Summary Every direct message of the current user
// @Description Newest first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(50)
// @Success 200 {array} models.DirectMessage
// @Router /api/chat/all [get]
func (cc *ChatController) All(c *gin.Context) {
	page, ok := pageQuery(c, cc.log, services.DefaultPageSize)
	if !ok {
		return
	}

	messages, err := cc.messages.AllChats(c.Request.Context(), middleware.CurrentUser(c).ID, page)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkRead godoc
// @Summary Mark a direct message as read
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param message_id path int true "Message ID"
// @Success 200 {object} map[string]string "Message marked as read"
// @Failure 404 {object} map[string]string "Message not found"
// @Router /api/chat/messages/{message_id}/read [put]
func (cc *ChatController) MarkRead(c *gin.Context) {
	messageID, ok := idParam(c, "message_id")
	if !ok {
		return
	}
	if err := cc.messages.MarkRead(c.Request.Context(), messageID, middleware.CurrentUser(c).ID); err != nil {
		respondError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CUknot/social_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MessageService persists chat messages and serves chat history
type MessageService struct {
	db          *gorm.DB
	log         logrus.FieldLogger
	connections *ConnectionService
	groups      *GroupService
}

func NewMessageService(db *gorm.DB, log logrus.FieldLogger, connections *ConnectionService, groups *GroupService) *MessageService {
	return &MessageService{db: db, log: log, connections: connections, groups: groups}
}

func (s *MessageService) SaveDirect(ctx context.Context, senderID, receiverID uint, content string) (*models.DirectMessage, error) {
	msg := models.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("save direct message: %w", err)
	}
	return &msg, nil
}

func (s *MessageService) SaveGroup(ctx context.Context, groupID, senderID uint, content string) (*models.GroupMessage, error) {
	msg := models.GroupMessage{
		GroupID:   groupID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("save group message: %w", err)
	}
	return &msg, nil
}

// DirectHistory returns the conversation between userID and friendID in the
// order it was sent
func (s *MessageService) DirectHistory(ctx context.Context, userID, friendID uint, page Page) ([]models.DirectMessage, error) {
	connected, err := s.connections.AreConnected(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, newError(ErrForbidden, "Not connected with this user")
	}

	var messages []models.DirectMessage
	if err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userID, friendID, friendID, userID).
		Order("timestamp ASC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("direct history: %w", err)
	}
	return messages, nil
}

// AllChats returns every direct message sent or received by userID, newest first
func (s *MessageService) AllChats(ctx context.Context, userID uint, page Page) ([]models.DirectMessage, error) {
	var messages []models.DirectMessage
	if err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("timestamp DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("all chats: %w", err)
	}
	return messages, nil
}

// MarkRead flags a direct message as read. Only its receiver may do so.
func (s *MessageService) MarkRead(ctx context.Context, messageID, userID uint) error {
	var msg models.DirectMessage
	err := s.db.WithContext(ctx).Where("id = ? AND receiver_id = ?", messageID, userID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "Message not found")
	}
	if err != nil {
		return fmt.Errorf("find message: %w", err)
	}
	if msg.IsRead {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&msg).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// GroupHistory returns the messages of a group in the order they were sent
func (s *MessageService) GroupHistory(ctx context.Context, groupID, userID uint, page Page) ([]models.GroupMessage, error) {
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, newError(ErrForbidden, "Not a group member")
	}

	var messages []models.GroupMessage
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("timestamp ASC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("group history: %w", err)
	}
	return messages, nil
}

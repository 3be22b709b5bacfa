package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/CUknot/social_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationService reads and acknowledges the per-user notification feed.
// Rows are appended by the workflows that produce them, inside their own
// transactions, through notify.
type NotificationService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewNotificationService(db *gorm.DB, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{db: db, log: log}
}

// List returns every notification of the user, newest first
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// Unread returns the unread notifications of the user with the related user loaded
func (s *NotificationService) Unread(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Preload("RelatedUser").
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at ASC").Order("id ASC").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags the notification as read. Marking a read notification
// again is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) error {
	var notification models.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "Notification not found")
	}
	if err != nil {
		return fmt.Errorf("find notification: %w", err)
	}

	if notification.IsRead {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// notify appends a notification using tx
func notify(tx *gorm.DB, n *models.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return fmt.Errorf("create %s notification: %w", n.Type, err)
	}
	return nil
}

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

// ConnectionService manages friend requests. Friendship is derived from
// accepted requests and is symmetric.
type ConnectionService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewConnectionService(db *gorm.DB, log logrus.FieldLogger) *ConnectionService {
	return &ConnectionService{db: db, log: log}
}

// IncomingRequest is a pending request flattened with its sender
type IncomingRequest struct {
	RequestID uint `json:"request_id"`
	models.UserSummary
	CreatedAt time.Time `json:"created_at"`
}

// AreConnected reports whether a and b are friends
func (s *ConnectionService) AreConnected(ctx context.Context, a, b uint) (bool, error) {
	return areConnected(s.db.WithContext(ctx), a, b)
}

func areConnected(db *gorm.DB, a, b uint) (bool, error) {
	var count int64
	err := db.Model(&models.ConnectionRequest{}).
		Where("status = ?", models.RequestAccepted).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check connection: %w", err)
	}
	return count > 0, nil
}

// SendRequest creates a pending request from sender to receiverID and
// notifies the receiver
func (s *ConnectionService) SendRequest(ctx context.Context, sender *models.User, receiverID uint) (*models.ConnectionRequest, error) {
	if sender.ID == receiverID {
		return nil, newError(ErrValidation, "Cannot send a connection request to yourself")
	}

	request := models.ConnectionRequest{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var receiver models.User
		if err := tx.Select("id").First(&receiver, receiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, "User not found")
			}
			return fmt.Errorf("find receiver: %w", err)
		}

		connected, err := areConnected(tx, sender.ID, receiverID)
		if err != nil {
			return err
		}
		if connected {
			return newError(ErrConflict, "Already connected")
		}

		var pending int64
		if err := tx.Model(&models.ConnectionRequest{}).
			Where("pair_key = ? AND status = ?", models.PairKey(sender.ID, receiverID), models.RequestPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("check pending request: %w", err)
		}
		if pending > 0 {
			return newError(ErrConflict, "Request already sent")
		}

		if err := tx.Create(&request).Error; err != nil {
			return conflictOnDuplicate(err, "Request already sent")
		}

		return notify(tx, &models.Notification{
			UserID:           receiverID,
			Message:          fmt.Sprintf("%s wants to connect with you", sender.Email),
			Type:             models.NotificationConnectionRequest,
			RelatedRequestID: &request.ID,
			RelatedUserID:    &sender.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  request.ID,
		"sender_id":   sender.ID,
		"receiver_id": receiverID,
	}).Info("Connection request sent")
	return &request, nil
}

// AcceptRequest moves a pending request addressed to actor to accepted
func (s *ConnectionService) AcceptRequest(ctx context.Context, requestID uint, actor *models.User) error {
	return s.resolve(ctx, requestID, actor, models.RequestAccepted)
}

// RejectRequest moves a pending request addressed to actor to rejected
func (s *ConnectionService) RejectRequest(ctx context.Context, requestID uint, actor *models.User) error {
	return s.resolve(ctx, requestID, actor, models.RequestRejected)
}

func (s *ConnectionService) resolve(ctx context.Context, requestID uint, actor *models.User, status models.RequestStatus) error {
	notificationType, verb := models.NotificationRequestAccepted, "accepted"
	if status == models.RequestRejected {
		notificationType, verb = models.NotificationRequestRejected, "rejected"
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.ConnectionRequest
		err := tx.Where("id = ? AND receiver_id = ?", requestID, actor.ID).First(&request).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, "Request not found")
		}
		if err != nil {
			return fmt.Errorf("find request: %w", err)
		}

		// Only one concurrent transition can win.
		res := tx.Model(&models.ConnectionRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("update request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return newError(ErrInvalidState, "Request already processed")
		}

		return notify(tx, &models.Notification{
			UserID:           request.SenderID,
			Message:          fmt.Sprintf("%s %s your connection request", actor.Email, verb),
			Type:             notificationType,
			RelatedRequestID: &request.ID,
			RelatedUserID:    &actor.ID,
		})
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"request_id": requestID, "status": status}).Info("Connection request resolved")
	return nil
}

// Friends returns the summaries of every user connected to userID
func (s *ConnectionService) Friends(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	var requests []models.ConnectionRequest
	if err := s.db.WithContext(ctx).
		Preload("Sender.Info").
		Preload("Receiver.Info").
		Where("status = ?", models.RequestAccepted).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("id ASC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	seen := make(map[uint]bool)
	friends := make([]models.UserSummary, 0, len(requests))
	for i := range requests {
		friend := &requests[i].Sender
		if requests[i].SenderID == userID {
			friend = &requests[i].Receiver
		}
		if seen[friend.ID] {
			continue
		}
		seen[friend.ID] = true
		friends = append(friends, friend.Summary())
	}
	return friends, nil
}

// IncomingRequests lists the pending requests addressed to userID
func (s *ConnectionService) IncomingRequests(ctx context.Context, userID uint) ([]IncomingRequest, error) {
	var requests []models.ConnectionRequest
	if err := s.db.WithContext(ctx).
		Preload("Sender.Info").
		Where("receiver_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}

	out := make([]IncomingRequest, 0, len(requests))
	for i := range requests {
		out = append(out, IncomingRequest{
			RequestID:   requests[i].ID,
			UserSummary: requests[i].Sender.Summary(),
			CreatedAt:   requests[i].CreatedAt,
		})
	}
	return out, nil
}

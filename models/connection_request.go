package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// ConnectionRequest is a friend request. Two users are friends iff an
// accepted request exists between them in either direction.
type ConnectionRequest struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	SenderID   uint          `gorm:"not null;index" json:"sender_id"`
	Sender     User          `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID uint          `gorm:"not null;index" json:"receiver_id"`
	Receiver   User          `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
	Status     RequestStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	// PairKey identifies the unordered pair; at most one pending row per pair.
	PairKey   string    `gorm:"size:64;not null;uniqueIndex:idx_pending_pair,where:status = 'pending'" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ConnectionRequest) BeforeCreate(tx *gorm.DB) error {
	r.PairKey = PairKey(r.SenderID, r.ReceiverID)
	if r.Status == "" {
		r.Status = RequestPending
	}
	return nil
}

// PairKey returns the same key for (a, b) and (b, a)
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

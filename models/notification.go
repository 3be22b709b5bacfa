package models

import (
	"time"
)

const (
	NotificationConnectionRequest = "connection_request"
	NotificationRequestAccepted   = "request_accepted"
	NotificationRequestRejected   = "request_rejected"
	NotificationNewUser           = "new_user"
	NotificationVerification      = "account verification"
)

type Notification struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	User             User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	IsRead           bool      `gorm:"not null;default:false;index" json:"is_read"`
	Type             string    `gorm:"size:50;not null" json:"type"`
	RelatedRequestID *uint     `json:"related_request_id"`
	RelatedUserID    *uint     `json:"related_user_id"`
	RelatedUser      *User     `gorm:"foreignKey:RelatedUserID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

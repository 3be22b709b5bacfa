package models

import (
	"time"
)

// DirectMessage is immutable once created except for IsRead, which only
// the receiver may set.
type DirectMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_dm_pair" json:"sender_id"`
	Sender     User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	ReceiverID uint      `gorm:"not null;index:idx_dm_pair" json:"receiver_id"`
	Receiver   User      `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
}

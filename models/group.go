package models

import (
	"time"
)

const (
	GroupRoleMember = "member"
	GroupRoleAdmin  = "admin"
)

type Group struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	OwnerID     uint          `gorm:"not null;index" json:"owner_id"`
	Owner       User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	Members     []GroupMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_user" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type GroupMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	Group     Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Sender    User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

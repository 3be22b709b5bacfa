package models

import (
	"time"
)

type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LikesCount int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	Likes      []Like    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Like is unique per (user, post)
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

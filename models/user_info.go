package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserInfo holds the profile bio of a user and the admin-controlled verification flag
type UserInfo struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Address          *string         `json:"address"`
	PhoneNumber      *string         `gorm:"size:32" json:"phone_number"`
	DOB              *datatypes.Date `json:"dob"`
	Passions         *string         `json:"passions"`
	IsVerified       bool            `gorm:"not null;default:false" json:"is_verified"`
	Lifestyle        *string         `json:"lifestyle"`
	Dietary          *string         `json:"dietary"`
	Available        bool            `gorm:"not null;default:false" json:"available"`
	Religion         *string         `json:"religion"`
	NumberOfChildren *int            `json:"number_of_children"`
	ProfilePicture   *string         `json:"profile_picture"`
	ProfilePublicID  *string         `json:"profile_public_id"`
	CreatedAt        time.Time       `json:"created_at"`
}

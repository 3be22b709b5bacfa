package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:255;not null" json:"first_name"`
	LastName  string    `gorm:"size:255;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Info      *UserInfo `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Posts     []Post    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate hashes the password before the row is inserted
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashedPassword)
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// ValidatePassword checks if the provided password matches the stored hash
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsVerified reports whether an administrator has verified the account.
// Info must be loaded.
func (u *User) IsVerified() bool {
	return u.Info != nil && u.Info.IsVerified
}

// UserSummary is the public shape of a user embedded in other responses
type UserSummary struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	ProfilePicture *string `json:"profile_picture"`
}

func (u *User) Summary() UserSummary {
	s := UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
	if u.Info != nil {
		s.ProfilePicture = u.Info.ProfilePicture
	}
	return s
}

// All lists every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{}, &UserInfo{}, &ConnectionRequest{}, &Notification{},
		&DirectMessage{}, &Group{}, &GroupMember{}, &GroupMessage{},
		&Post{}, &Like{},
	}
}

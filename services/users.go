package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CUknot/social_backend/models"
	"github.com/CUknot/social_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	log      logrus.FieldLogger
	secret   string
	tokenTTL time.Duration
}

func NewUserService(db *gorm.DB, log logrus.FieldLogger, secret string, tokenTTL time.Duration) *UserService {
	return &UserService{db: db, log: log, secret: secret, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	UserID      uint   `json:"user_id"`
}

type StatusResult struct {
	IsVerified bool   `json:"is_verified"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
}

// Register creates an unverified account and tells every admin about it
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  in.Password,
		Role:      models.RoleUser,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return newError(ErrConflict, "Email already registered")
		}

		if err := tx.Create(&user).Error; err != nil {
			return conflictOnDuplicate(err, "Email already registered")
		}
		if err := tx.Create(&models.UserInfo{UserID: user.ID}).Error; err != nil {
			return fmt.Errorf("create user info: %w", err)
		}

		var admins []models.User
		if err := tx.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
			return fmt.Errorf("find admins: %w", err)
		}
		for _, admin := range admins {
			if err := notify(tx, &models.Notification{
				UserID:        admin.ID,
				Message:       fmt.Sprintf("New user registered: %s", user.Email),
				Type:          models.NotificationNewUser,
				RelatedUserID: &user.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")
	return &user, nil
}

// Login checks the credentials and issues a token. Non-admin accounts must
// be verified by an admin first.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrUnauthorized, "Incorrect username or password")
	}
	if err != nil {
		return nil, err
	}

	if err := user.ValidatePassword(password); err != nil {
		s.log.WithField("email", user.Email).Warn("Invalid password attempt")
		return nil, newError(ErrUnauthorized, "Incorrect username or password")
	}

	if !user.IsAdmin() && !user.IsVerified() {
		return nil, newError(ErrForbidden, "Account not verified. Please wait for verification from admin.")
	}

	token, err := utils.GenerateToken(s.secret, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		UserID:      user.ID,
	}, nil
}

// ByEmail loads the user with its profile info
func (s *UserService) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Info").Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *UserService) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Info").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Verify marks the account verified and notifies its owner
func (s *UserService) Verify(ctx context.Context, userID uint) error {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.Info == nil {
			if err := tx.Create(&models.UserInfo{UserID: user.ID, IsVerified: true}).Error; err != nil {
				return fmt.Errorf("create user info: %w", err)
			}
		} else if err := tx.Model(user.Info).Update("is_verified", true).Error; err != nil {
			return fmt.Errorf("verify user: %w", err)
		}

		return notify(tx, &models.Notification{
			UserID:        user.ID,
			Message:       "Your account has been verified",
			Type:          models.NotificationVerification,
			RelatedUserID: &user.ID,
		})
	})
	if err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID).Info("User verified")
	return nil
}

// ListUsers returns every non-admin account
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Info").
		Where("role <> ?", models.RoleAdmin).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, newError(ErrNotFound, "No users found")
	}
	return summaries(users), nil
}

// Status reports whether the account was verified; unverified accounts are
// reported as not found.
func (s *UserService) Status(ctx context.Context, userID uint) (*StatusResult, error) {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Info == nil {
		return nil, newError(ErrNotFound, "User info not found")
	}
	if !user.Info.IsVerified {
		return nil, newError(ErrNotFound, "User not verified! Please wait for admin approval.")
	}
	return &StatusResult{
		IsVerified: true,
		UserID:     user.ID,
		Username:   user.FirstName + " " + user.LastName,
	}, nil
}

// Suggested lists non-admin users with no connection request to or from userID
func (s *UserService) Suggested(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	db := s.db.WithContext(ctx)
	senders := db.Model(&models.ConnectionRequest{}).Select("sender_id").Where("receiver_id = ?", userID)
	receivers := db.Model(&models.ConnectionRequest{}).Select("receiver_id").Where("sender_id = ?", userID)

	var users []models.User
	if err := db.Preload("Info").
		Where("role <> ? AND id <> ?", models.RoleAdmin, userID).
		Where("id NOT IN (?)", senders).
		Where("id NOT IN (?)", receivers).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("suggested users: %w", err)
	}
	return summaries(users), nil
}

// EnsureAdmin creates the admin account when no user has that email yet
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		FirstName: "Admin",
		LastName:  "Admin",
		Email:     email,
		Password:  password,
		Role:      models.RoleAdmin,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserInfo{UserID: admin.ID, IsVerified: true}).Error
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.log.WithField("email", email).Info("Admin account created")
	return nil
}

func summaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/CUknot/social_backend/imagestore"
	"github.com/CUknot/social_backend/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MaxPictureSize = 5 << 20

// sniffLen is how much of an upload is read to detect its type
const sniffLen = 512

var pictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ProfileService manages the bio and the hosted profile picture of a user
type ProfileService struct {
	db     *gorm.DB
	log    logrus.FieldLogger
	images imagestore.Store
}

func NewProfileService(db *gorm.DB, log logrus.FieldLogger, images imagestore.Store) *ProfileService {
	return &ProfileService{db: db, log: log, images: images}
}

// BioUpdate is a partial update; nil fields are left unchanged
type BioUpdate struct {
	Address              *string `json:"address"`
	PhoneNumber          *string `json:"phone_number"`
	DOB                  *string `json:"dob"`
	Passions             *string `json:"passions"`
	Lifestyle            *string `json:"lifestyle"`
	Dietary              *string `json:"dietary"`
	Available            *bool   `json:"available"`
	Religion             *string `json:"religion"`
	NumberOfChildren     *int    `json:"number_of_children" binding:"omitempty,min=0"`
	RemoveProfilePicture bool    `json:"remove_profile_picture"`
}

// Picture is an uploaded profile picture. Its type is detected from the
// content, not from the client-declared header.
type Picture struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (s *ProfileService) GetBio(ctx context.Context, userID uint) (*models.UserInfo, error) {
	var info models.UserInfo
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "User bio not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find bio: %w", err)
	}
	return &info, nil
}

// UpdateBio applies the non-nil fields of in, creating the record if needed
func (s *ProfileService) UpdateBio(ctx context.Context, userID uint, in BioUpdate) (*models.UserInfo, error) {
	updates := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setString("address", in.Address)
	setString("phone_number", in.PhoneNumber)
	setString("passions", in.Passions)
	setString("lifestyle", in.Lifestyle)
	setString("dietary", in.Dietary)
	setString("religion", in.Religion)
	if in.DOB != nil {
		dob, err := time.Parse(time.DateOnly, *in.DOB)
		if err != nil {
			return nil, newError(ErrValidation, "dob must be formatted as YYYY-MM-DD")
		}
		updates["dob"] = datatypes.Date(dob)
	}
	if in.Available != nil {
		updates["available"] = *in.Available
	}
	if in.NumberOfChildren != nil {
		updates["number_of_children"] = *in.NumberOfChildren
	}

	var (
		info    models.UserInfo
		staleID *string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&info).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			info = models.UserInfo{UserID: userID}
			if err := tx.Create(&info).Error; err != nil {
				return fmt.Errorf("create bio: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("find bio: %w", err)
		}

		if in.RemoveProfilePicture && info.ProfilePicture != nil {
			staleID = info.ProfilePublicID
			updates["profile_picture"] = nil
			updates["profile_public_id"] = nil
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&info).Updates(updates).Error; err != nil {
			return fmt.Errorf("update bio: %w", err)
		}
		return tx.First(&info, info.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if staleID != nil {
		s.deleteImage(ctx, *staleID)
	}
	return &info, nil
}

// UpdatePicture uploads a new profile picture and replaces the previous one
func (s *ProfileService) UpdatePicture(ctx context.Context, userID uint, pic Picture) (*models.UserInfo, error) {
	if pic.Filename == "" || pic.Size == 0 {
		return nil, newError(ErrValidation, "No file uploaded")
	}
	if pic.Size > MaxPictureSize {
		return nil, newError(ErrValidation, "File size must be less than 5MB")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(pic.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read profile picture: %w", err)
	}
	head = head[:n]
	if !pictureTypes[mimetype.Detect(head).String()] {
		return nil, newError(ErrValidation, "Only JPEG, PNG and WEBP images are allowed")
	}
	body := io.MultiReader(bytes.NewReader(head), pic.Body)

	publicID := fmt.Sprintf("user_%d_%s", userID, uuid.NewString())
	image, err := s.images.Upload(ctx, body, publicID)
	if err != nil {
		return nil, fmt.Errorf("upload profile picture: %w", err)
	}

	var (
		info    models.UserInfo
		staleID *string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&info).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			info = models.UserInfo{UserID: userID, ProfilePicture: &image.URL, ProfilePublicID: &image.PublicID}
			return tx.Create(&info).Error
		}
		if err != nil {
			return err
		}

		staleID = info.ProfilePublicID
		info.ProfilePicture = &image.URL
		info.ProfilePublicID = &image.PublicID
		return tx.Model(&info).Updates(map[string]interface{}{
			"profile_picture":   image.URL,
			"profile_public_id": image.PublicID,
		}).Error
	})
	if err != nil {
		s.deleteImage(ctx, image.PublicID)
		return nil, fmt.Errorf("save profile picture: %w", err)
	}

	if staleID != nil && *staleID != image.PublicID {
		s.deleteImage(ctx, *staleID)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "public_id": image.PublicID}).Info("Profile picture updated")
	return &info, nil
}

// deleteImage removes a hosted image; failures are only logged
func (s *ProfileService) deleteImage(ctx context.Context, publicID string) {
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.log.WithError(err).WithField("public_id", publicID).Warn("Failed to delete image")
	}
}

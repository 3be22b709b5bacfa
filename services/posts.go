package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CUknot/social_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultPostLimit = 10
	MaxPostLimit     = 100
)

type PostService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewPostService(db *gorm.DB, log logrus.FieldLogger) *PostService {
	return &PostService{db: db, log: log}
}

// LikeResult reports the outcome of a like toggle
type LikeResult struct {
	Message string      `json:"message"`
	Liked   bool        `json:"liked"`
	Post    models.Post `json:"post"`
}

func (s *PostService) Create(ctx context.Context, userID uint, content string) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newError(ErrValidation, "content must not be blank")
	}

	post := models.Post{UserID: userID, Content: content}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": userID}).Info("Post created")
	return &post, nil
}

// Mine returns the posts of userID, newest first
func (s *PostService) Mine(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list own posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) List(ctx context.Context, skip, limit int) ([]models.Post, error) {
	if skip < 0 {
		return nil, newError(ErrValidation, "skip must not be negative")
	}
	if limit < 1 || limit > MaxPostLimit {
		return nil, newError(ErrValidation, "limit must be between 1 and 100")
	}

	var posts []models.Post
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	return getPost(s.db.WithContext(ctx), postID)
}

func getPost(db *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	err := db.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

// Delete removes a post owned by userID together with its likes
func (s *PostService) Delete(ctx context.Context, postID, userID uint) (*models.Post, error) {
	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = getPost(tx, postID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return newError(ErrForbidden, "Not authorized to delete this post")
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Delete(post).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("post_id", postID).Info("Post deleted")
	return post, nil
}

// ToggleLike likes the post, or removes the like when userID already liked it
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (*LikeResult, error) {
	result := LikeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getPost(tx, postID); err != nil {
			return err
		}

		del := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if del.Error != nil {
			return fmt.Errorf("remove like: %w", del.Error)
		}

		delta := "likes_count - 1"
		result.Message = "Like removed"
		if del.RowsAffected == 0 {
			if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return conflictOnDuplicate(err, "Like already recorded")
			}
			delta = "likes_count + 1"
			result.Message = "Post liked"
			result.Liked = true
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr(delta)).Error; err != nil {
			return fmt.Errorf("update likes count: %w", err)
		}

		post, err := getPost(tx, postID)
		if err != nil {
			return err
		}
		result.Post = *post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LikedPosts returns the posts userID liked, most recent like first
func (s *PostService) LikedPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).
		Joins("JOIN likes ON likes.post_id = posts.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").Order("likes.id DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list liked posts: %w", err)
	}
	return posts, nil
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CUknot/social_backend/models"
	"github.com/CUknot/social_backend/services"
	"github.com/CUknot/social_backend/utils"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// UserLookup resolves the subject of a token to an account
type UserLookup interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator turns bearer tokens into accounts
type Authenticator struct {
	users  UserLookup
	secret string
}

func NewAuthenticator(users UserLookup, secret string) *Authenticator {
	return &Authenticator{users: users, secret: secret}
}

// Authenticate validates the token and loads the account it names
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	invalid := &services.Error{Kind: services.ErrUnauthorized, Message: "Could not validate credentials"}

	if token == "" {
		return nil, invalid
	}
	claims, err := utils.ParseToken(a.secret, token)
	if err != nil {
		return nil, invalid
	}

	user, err := a.users.ByEmail(ctx, claims.Subject)
	if errors.Is(err, services.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// JWTAuth requires a valid "Authorization: Bearer <token>" header and stores
// the account in the context
func (a *Authenticator) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		user, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if errors.Is(err, services.ErrUnauthorized) {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// AdminOnly must run after JWTAuth
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account stored by JWTAuth, or nil
func CurrentUser(c *gin.Context) *models.User {
	user, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := user.(*models.User)
	return u
}

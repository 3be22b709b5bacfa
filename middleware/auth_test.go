package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CUknot/social_backend/models"
	"github.com/CUknot/social_backend/services"
	"github.com/CUknot/social_backend/utils"
	"github.com/gin-gonic/gin"
)

const secret = "test-secret"

type mockUsers map[string]*models.User

func (m mockUsers) ByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m[email]; ok {
		return u, nil
	}
	return nil, &services.Error{Kind: services.ErrNotFound, Message: "User not found"}
}

func newRouter(auth *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", auth.JWTAuth())
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	api.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func request(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func token(t *testing.T, email, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, email, role, ttl)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func TestJWTAuth(t *testing.T) {
	users := mockUsers{
		"ann@example.com":   {ID: 1, Email: "ann@example.com", Role: models.RoleUser},
		"admin@example.com": {ID: 2, Email: "admin@example.com", Role: models.RoleAdmin},
	}
	r := newRouter(NewAuthenticator(users, secret))

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"missing header", "/api/me", "", http.StatusUnauthorized},
		{"garbage token", "/api/me", "not-a-token", http.StatusUnauthorized},
		{"expired token", "/api/me", token(t, "ann@example.com", models.RoleUser, -time.Minute), http.StatusUnauthorized},
		{"unknown subject", "/api/me", token(t, "ghost@example.com", models.RoleUser, time.Hour), http.StatusUnauthorized},
		{"valid token", "/api/me", token(t, "ann@example.com", models.RoleUser, time.Hour), http.StatusOK},
		{"non admin", "/api/admin", token(t, "ann@example.com", models.RoleUser, time.Hour), http.StatusForbidden},
		{"admin", "/api/admin", token(t, "admin@example.com", models.RoleAdmin, time.Hour), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := request(t, r, tt.path, tt.token)
			if rr.Code != tt.status {
				t.Errorf("Expected status %d, got %d (%s)", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAdminRoleComesFromAccount(t *testing.T) {
	// A token claiming admin does not grant admin to a user account
	users := mockUsers{"ann@example.com": {ID: 1, Email: "ann@example.com", Role: models.RoleUser}}
	r := newRouter(NewAuthenticator(users, secret))

	rr := request(t, r, "/api/admin", token(t, "ann@example.com", models.RoleAdmin, time.Hour))
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/CUknot/social_backend/config"
	"github.com/CUknot/social_backend/database"
	"github.com/CUknot/social_backend/imagestore"
	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logging.Discard()

	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		NotificationInterval: time.Second,
	}
	users := services.NewUserService(db, log, cfg.JWTSecret, cfg.TokenTTL)
	if err := users.EnsureAdmin(context.Background(), adminEmail, adminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	router, err := New(Deps{
		Config:   cfg,
		DB:       db,
		Images:   imagestore.Disabled{},
		Registry: prometheus.NewRegistry(),
		Log:      log,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return &testAPI{t: t, router: router}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) expect(w *httptest.ResponseRecorder, status int, out interface{}) {
	a.t.Helper()
	if w.Code != status {
		a.t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
}

func (a *testAPI) login(email, password string) services.LoginResult {
	a.t.Helper()
	var res services.LoginResult
	a.expect(a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password}), http.StatusOK, &res)
	return res
}

// signup registers, verifies and logs a user in
func (a *testAPI) signup(email string) services.LoginResult {
	a.t.Helper()
	var reg struct {
		UserID uint `json:"user_id"`
	}
	a.expect(a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "password",
	}), http.StatusCreated, &reg)

	admin := a.login(adminEmail, adminPassword)
	a.expect(a.do(http.MethodPost, fmt.Sprintf("/api/admin/verify/%d", reg.UserID), admin.AccessToken, nil), http.StatusOK, nil)
	return a.login(email, "password")
}

func TestRegistrationAndVerificationFlow(t *testing.T) {
	api := newTestAPI(t)

	body := gin.H{"first_name": "Ann", "last_name": "Lee", "email": "ann@example.com", "password": "password"}
	var reg struct {
		Msg    string `json:"msg"`
		UserID uint   `json:"user_id"`
	}
	api.expect(api.do(http.MethodPost, "/api/auth/register", "", body), http.StatusCreated, &reg)
	if reg.Msg != "User registered successfully" {
		t.Errorf("unexpected message %q", reg.Msg)
	}

	api.expect(api.do(http.MethodPost, "/api/auth/register", "", body), http.StatusConflict, nil)

	// unverified accounts cannot log in
	api.expect(api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "password"}), http.StatusForbidden, nil)
	api.expect(api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong"}), http.StatusUnauthorized, nil)

	var status services.StatusResult
	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/users/status/%d", reg.UserID), "", nil), http.StatusOK, &status)
	if status.IsVerified {
		t.Error("expected unverified status")
	}

	admin := api.login(adminEmail, adminPassword)
	var users []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/admin/users", admin.AccessToken, nil), http.StatusOK, &users)
	if len(users) != 1 {
		t.Fatalf("expected 1 listed user, got %d", len(users))
	}

	var notes []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/connections/notifications", admin.AccessToken, nil), http.StatusOK, &notes)
	if len(notes) != 1 || notes[0]["type"] != "new_user" {
		t.Fatalf("expected a new_user notification for the admin, got %v", notes)
	}

	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/admin/verify/%d", reg.UserID), admin.AccessToken, nil), http.StatusOK, nil)

	// form login uses the username field
	form := url.Values{"username": {"ann@example.com"}, "password": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	var res services.LoginResult
	api.expect(w, http.StatusOK, &res)
	if res.TokenType != "bearer" || res.UserID != reg.UserID {
		t.Errorf("unexpected login result %+v", res)
	}

	var me map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/users/me", res.AccessToken, nil), http.StatusOK, &me)
	if me["email"] != "ann@example.com" {
		t.Errorf("unexpected profile %v", me)
	}
}

func TestProtectedRoutes(t *testing.T) {
	api := newTestAPI(t)
	user := api.signup("bob@example.com")

	api.expect(api.do(http.MethodGet, "/api/users/me", "", nil), http.StatusUnauthorized, nil)
	api.expect(api.do(http.MethodGet, "/api/users/me", "garbage", nil), http.StatusUnauthorized, nil)
	api.expect(api.do(http.MethodGet, "/api/admin/dashboard", user.AccessToken, nil), http.StatusForbidden, nil)

	admin := api.login(adminEmail, adminPassword)
	var dash map[string]string
	api.expect(api.do(http.MethodGet, "/api/admin/dashboard", admin.AccessToken, nil), http.StatusOK, &dash)
	if dash["msg"] != "Welcome to the admin dashboard" {
		t.Errorf("unexpected dashboard %v", dash)
	}

	api.expect(api.do(http.MethodGet, "/api/posts/abc", user.AccessToken, nil), http.StatusBadRequest, nil)
}

func TestConnectionAndChatFlow(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("alice@example.com")
	bob := api.signup("bob@example.com")

	var suggested []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/users/suggested", alice.AccessToken, nil), http.StatusOK, &suggested)
	if len(suggested) != 1 {
		t.Fatalf("expected bob suggested, got %v", suggested)
	}

	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/chat/history/%d", bob.UserID), alice.AccessToken, nil), http.StatusForbidden, nil)

	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/connections/request/%d", alice.UserID), alice.AccessToken, nil), http.StatusBadRequest, nil)
	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/connections/request/%d", bob.UserID), alice.AccessToken, nil), http.StatusCreated, nil)
	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/connections/request/%d", bob.UserID), alice.AccessToken, nil), http.StatusConflict, nil)

	var incoming []services.IncomingRequest
	api.expect(api.do(http.MethodGet, "/api/users/me/requests", bob.AccessToken, nil), http.StatusOK, &incoming)
	if len(incoming) != 1 || incoming[0].ID != alice.UserID {
		t.Fatalf("unexpected incoming requests %+v", incoming)
	}

	accept := fmt.Sprintf("/api/connections/accept/%d", incoming[0].RequestID)
	api.expect(api.do(http.MethodPut, accept, alice.AccessToken, nil), http.StatusNotFound, nil)
	api.expect(api.do(http.MethodPut, accept, bob.AccessToken, nil), http.StatusOK, nil)
	api.expect(api.do(http.MethodPut, accept, bob.AccessToken, nil), http.StatusBadRequest, nil)

	var friends []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/connections/friends", alice.AccessToken, nil), http.StatusOK, &friends)
	if len(friends) != 1 {
		t.Fatalf("expected one friend, got %v", friends)
	}

	var notes []struct {
		ID   uint   `json:"id"`
		Type string `json:"type"`
	}
	api.expect(api.do(http.MethodGet, "/api/connections/notifications", alice.AccessToken, nil), http.StatusOK, &notes)
	var accepted uint
	for _, n := range notes {
		if n.Type == "request_accepted" {
			accepted = n.ID
		}
	}
	if accepted == 0 {
		t.Fatalf("expected an acceptance notification, got %+v", notes)
	}
	var marked map[string]string
	api.expect(api.do(http.MethodPut, fmt.Sprintf("/api/connections/notifications/%d/read", accepted), alice.AccessToken, nil), http.StatusOK, &marked)
	if marked["status"] != "marked as read" {
		t.Errorf("unexpected response %v", marked)
	}

	var history []map[string]interface{}
	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/chat/history/%d", bob.UserID), alice.AccessToken, nil), http.StatusOK, &history)
	if len(history) != 0 {
		t.Errorf("expected empty history, got %v", history)
	}
	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/chat/history/%d?page=0", bob.UserID), alice.AccessToken, nil), http.StatusBadRequest, nil)
	api.expect(api.do(http.MethodGet, "/api/chat/all?page_size=x", alice.AccessToken, nil), http.StatusBadRequest, nil)
	api.expect(api.do(http.MethodPut, "/api/chat/messages/99/read", alice.AccessToken, nil), http.StatusNotFound, nil)
}

func TestGroupFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.signup("owner@example.com")
	member := api.signup("member@example.com")
	outsider := api.signup("outsider@example.com")

	api.expect(api.do(http.MethodPost, "/api/groups/create", owner.AccessToken, gin.H{"name": "  "}), http.StatusBadRequest, nil)

	var group struct {
		ID      uint `json:"id"`
		OwnerID uint `json:"owner_id"`
	}
	api.expect(api.do(http.MethodPost, "/api/groups/create", owner.AccessToken, gin.H{
		"name":        "Climbers",
		"description": "Weekend trips",
		"member_ids":  []uint{member.UserID},
	}), http.StatusCreated, &group)
	if group.OwnerID != owner.UserID {
		t.Errorf("expected owner %d, got %d", owner.UserID, group.OwnerID)
	}

	membersPath := fmt.Sprintf("/api/groups/%d/members", group.ID)
	api.expect(api.do(http.MethodPost, membersPath, member.AccessToken, []gin.H{{"user_id": outsider.UserID}}), http.StatusForbidden, nil)

	var added map[string]interface{}
	api.expect(api.do(http.MethodPost, membersPath, owner.AccessToken, []gin.H{{"user_id": outsider.UserID}, {"user_id": member.UserID}}), http.StatusOK, &added)
	if added["message"] != "1 members added to the group." {
		t.Errorf("unexpected response %v", added)
	}

	var mine []services.GroupSummary
	api.expect(api.do(http.MethodGet, "/api/groups/my-groups", outsider.AccessToken, nil), http.StatusOK, &mine)
	if len(mine) != 1 || mine[0].MemberCount != 3 || mine[0].YourRole != "member" {
		t.Fatalf("unexpected groups %+v", mine)
	}

	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/groups/%d/messages", group.ID), outsider.AccessToken, nil), http.StatusOK, nil)
	api.expect(api.do(http.MethodGet, "/api/groups/999/messages", outsider.AccessToken, nil), http.StatusForbidden, nil)
}

func TestPostFlow(t *testing.T) {
	api := newTestAPI(t)
	author := api.signup("author@example.com")
	reader := api.signup("reader@example.com")

	var post struct {
		ID         uint `json:"id"`
		LikesCount int  `json:"likes_count"`
	}
	api.expect(api.do(http.MethodPost, "/api/posts", author.AccessToken, gin.H{"content": "hello"}), http.StatusCreated, &post)
	api.expect(api.do(http.MethodPost, "/api/posts", author.AccessToken, gin.H{"content": " "}), http.StatusBadRequest, nil)

	var like services.LikeResult
	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/likes/like/%d", post.ID), reader.AccessToken, nil), http.StatusOK, &like)
	if !like.Liked || like.Post.LikesCount != 1 {
		t.Errorf("unexpected like result %+v", like)
	}

	var liked []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/users/me/liked-posts", reader.AccessToken, nil), http.StatusOK, &liked)
	if len(liked) != 1 {
		t.Errorf("expected one liked post, got %v", liked)
	}

	var list []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/posts?skip=0&limit=5", reader.AccessToken, nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Errorf("expected one post, got %v", list)
	}
	api.expect(api.do(http.MethodGet, "/api/posts?limit=0", reader.AccessToken, nil), http.StatusBadRequest, nil)

	var mine []map[string]interface{}
	api.expect(api.do(http.MethodGet, "/api/posts/me", reader.AccessToken, nil), http.StatusOK, &mine)
	if len(mine) != 0 {
		t.Errorf("expected no posts for reader, got %v", mine)
	}

	path := fmt.Sprintf("/api/posts/%d", post.ID)
	api.expect(api.do(http.MethodDelete, path, reader.AccessToken, nil), http.StatusForbidden, nil)
	var deleted map[string]interface{}
	api.expect(api.do(http.MethodDelete, path, author.AccessToken, nil), http.StatusOK, &deleted)
	if deleted["msg"] != "Post deleted successfully" {
		t.Errorf("unexpected response %v", deleted)
	}
	api.expect(api.do(http.MethodGet, path, author.AccessToken, nil), http.StatusNotFound, nil)
}

func TestProfileRoutes(t *testing.T) {
	api := newTestAPI(t)
	user := api.signup("carol@example.com")

	var info map[string]interface{}
	api.expect(api.do(http.MethodPut, "/api/users/me/update-bio", user.AccessToken, gin.H{"address": "Bangkok", "dob": "1999-02-03"}), http.StatusOK, &info)
	if info["address"] != "Bangkok" {
		t.Errorf("unexpected bio %v", info)
	}
	api.expect(api.do(http.MethodPut, "/api/users/me/update-bio", user.AccessToken, gin.H{"dob": "03/02/1999"}), http.StatusBadRequest, nil)
	api.expect(api.do(http.MethodGet, "/api/users/me/bio", user.AccessToken, nil), http.StatusOK, nil)

	// missing multipart field
	api.expect(api.do(http.MethodPut, "/api/users/me/add-profile-picture", user.AccessToken, nil), http.StatusBadRequest, nil)
}

func TestMetricsAndCORS(t *testing.T) {
	api := newTestAPI(t)

	api.expect(api.do(http.MethodGet, "/api/users/me", "", nil), http.StatusUnauthorized, nil)

	w := api.do(http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `http_requests_total{code="401",path="/api/users/me"} 1`) {
		t.Errorf("request counter missing from metrics output:\n%s", w.Body.String())
	}

	w = api.do(http.MethodOptions, "/api/posts", "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected preflight 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/services"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthorized", &services.Error{Kind: services.ErrUnauthorized, Message: "bad token"}, http.StatusUnauthorized, "bad token"},
		{"forbidden", &services.Error{Kind: services.ErrForbidden, Message: "nope"}, http.StatusForbidden, "nope"},
		{"validation", &services.Error{Kind: services.ErrValidation, Message: "bad input"}, http.StatusBadRequest, "bad input"},
		{"conflict", &services.Error{Kind: services.ErrConflict, Message: "exists"}, http.StatusConflict, "exists"},
		{"not found", &services.Error{Kind: services.ErrNotFound, Message: "missing"}, http.StatusNotFound, "missing"},
		{"invalid state", &services.Error{Kind: services.ErrInvalidState, Message: "done"}, http.StatusBadRequest, "done"},
		{"wrapped", fmt.Errorf("outer: %w", &services.Error{Kind: services.ErrNotFound, Message: "missing"}), http.StatusNotFound, "missing"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, logging.Discard(), tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, body["error"])
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/items/:item_id", func(c *gin.Context) {
		id, ok := idParam(c, "item_id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, status := range map[string]int{
		"/items/7":   http.StatusOK,
		"/items/0":   http.StatusBadRequest,
		"/items/-1":  http.StatusBadRequest,
		"/items/abc": http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != status {
			t.Errorf("%s: expected %d, got %d", path, status, w.Code)
		}
	}
}

func TestPageQuery(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		page, ok := pageQuery(c, logging.Discard(), 10)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, page)
	})

	tests := []struct {
		query  string
		status int
		page   services.Page
	}{
		{"", http.StatusOK, services.Page{Number: 1, Size: 10}},
		{"?page=3&page_size=20", http.StatusOK, services.Page{Number: 3, Size: 20}},
		{"?page=0", http.StatusBadRequest, services.Page{}},
		{"?page_size=1000", http.StatusBadRequest, services.Page{}},
		{"?page=two", http.StatusBadRequest, services.Page{}},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
		if w.Code != tt.status {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.status, w.Code)
			continue
		}
		if tt.status != http.StatusOK {
			continue
		}
		var got services.Page
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != tt.page {
			t.Errorf("%q: expected %+v, got %+v", tt.query, tt.page, got)
		}
	}
}

func TestNotBlankBinding(t *testing.T) {
	for body, status := range map[string]int{
		`{"content":"hi"}`:  http.StatusOK,
		`{"content":"   "}`: http.StatusBadRequest,
		`{}`:                http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		var input CreatePostInput
		got := http.StatusOK
		if err := c.ShouldBindJSON(&input); err != nil {
			got = http.StatusBadRequest
		}
		if got != status {
			t.Errorf("%s: expected %d, got %d", body, status, got)
		}
	}
}

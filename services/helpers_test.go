package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/CUknot/social_backend/database"
	"github.com/CUknot/social_backend/imagestore"
	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logging.Discard()
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, verified bool) *models.User {
	t.Helper()
	user := models.User{FirstName: "First", LastName: "Last", Email: email, Password: "password"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	info := models.UserInfo{UserID: user.ID, IsVerified: verified}
	if err := db.Create(&info).Error; err != nil {
		t.Fatalf("create info %s: %v", email, err)
	}
	user.Info = &info
	return &user
}

func connect(t *testing.T, db *gorm.DB, a, b *models.User) {
	t.Helper()
	svc := NewConnectionService(db, logging.Discard())
	req, err := svc.SendRequest(context.Background(), a, b.ID)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), req.ID, b); err != nil {
		t.Fatalf("accept request: %v", err)
	}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Errorf("Expected %v, got %v", kind, err)
	}
}

// fakeImages records uploads and deletes in memory
type fakeImages struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	lastBody  []byte
	uploadErr error
}

func (f *fakeImages) Upload(_ context.Context, file io.Reader, publicID string) (*imagestore.Image, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, publicID)
	f.lastBody = buf.Bytes()
	return &imagestore.Image{URL: "https://images.example.com/" + publicID, PublicID: publicID}, nil
}

func (f *fakeImages) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(db, logging.Discard(), testSecret, time.Hour)
}

package database

import (
	"fmt"
	"testing"

	"github.com/CUknot/social_backend/config"
	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	log := logging.Discard()
	db, err := Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(config.DBConfig{Driver: "oracle"}, logging.Discard()); err == nil {
		t.Errorf("Expected error for unsupported driver")
	}
}

func TestPendingPairIsUnique(t *testing.T) {
	db := openMemory(t)

	alice := models.User{FirstName: "A", LastName: "A", Email: "a@example.com", Password: "secret"}
	bob := models.User{FirstName: "B", LastName: "B", Email: "b@example.com", Password: "secret"}
	db.Create(&alice)
	db.Create(&bob)

	if err := db.Create(&models.ConnectionRequest{SenderID: alice.ID, ReceiverID: bob.ID}).Error; err != nil {
		t.Fatalf("first request: %v", err)
	}

	err := db.Create(&models.ConnectionRequest{SenderID: bob.ID, ReceiverID: alice.ID}).Error
	if !IsDuplicate(err) {
		t.Errorf("Expected duplicated key for reversed pending pair, got %v", err)
	}

	// Settled requests do not block a new pending one
	db.Model(&models.ConnectionRequest{}).Where("sender_id = ?", alice.ID).Update("status", models.RequestRejected)
	if err := db.Create(&models.ConnectionRequest{SenderID: bob.ID, ReceiverID: alice.ID}).Error; err != nil {
		t.Errorf("Expected new pending request after rejection, got %v", err)
	}
}

func TestLikeIsUnique(t *testing.T) {
	db := openMemory(t)

	user := models.User{FirstName: "A", LastName: "A", Email: "a@example.com", Password: "secret"}
	db.Create(&user)
	post := models.Post{UserID: user.ID, Content: "hello"}
	db.Create(&post)

	if err := db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("first like: %v", err)
	}
	if err := db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error; !IsDuplicate(err) {
		t.Errorf("Expected duplicated key, got %v", err)
	}
}

func TestPasswordIsHashedOnCreate(t *testing.T) {
	db := openMemory(t)

	user := models.User{FirstName: "A", LastName: "A", Email: "a@example.com", Password: "secret"}
	db.Create(&user)

	var stored models.User
	db.First(&stored, user.ID)
	if stored.Password == "secret" {
		t.Fatalf("Password stored in clear text")
	}
	if err := stored.ValidatePassword("secret"); err != nil {
		t.Errorf("Expected password to validate: %v", err)
	}
	if stored.Role != models.RoleUser {
		t.Errorf("Expected default role user, got %s", stored.Role)
	}
}

func TestIsDuplicate(t *testing.T) {
	if IsDuplicate(nil) {
		t.Errorf("nil is not a duplicate")
	}
	if !IsDuplicate(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)) {
		t.Errorf("Expected wrapped ErrDuplicatedKey to be a duplicate")
	}
	if IsDuplicate(gorm.ErrRecordNotFound) {
		t.Errorf("ErrRecordNotFound is not a duplicate")
	}
}

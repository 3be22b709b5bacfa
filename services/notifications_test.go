package services

import (
	"context"
	"testing"
	"time"

	"github.com/CUknot/social_backend/logging"
	"github.com/CUknot/social_backend/models"
)

func TestNotificationFeed(t *testing.T) {
	db := openDB(t)
	svc := NewNotificationService(db, logging.Discard())
	ctx := context.Background()
	alice := createUser(t, db, "alice@example.com", true)
	bob := createUser(t, db, "bob@example.com", true)

	older := models.Notification{UserID: alice.ID, Message: "first", Type: models.NotificationNewUser, RelatedUserID: &bob.ID, CreatedAt: time.Now().Add(-time.Minute)}
	newer := models.Notification{UserID: alice.ID, Message: "second", Type: models.NotificationNewUser}
	other := models.Notification{UserID: bob.ID, Message: "not yours", Type: models.NotificationNewUser}
	for _, n := range []*models.Notification{&older, &newer, &other} {
		if err := db.Create(n).Error; err != nil {
			t.Fatalf("create notification: %v", err)
		}
	}

	all, err := svc.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != newer.ID {
		t.Errorf("Expected newest first, got %+v", all)
	}

	unread, err := svc.Unread(ctx, alice.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(unread) != 2 || unread[0].RelatedUser == nil || unread[0].RelatedUser.ID != bob.ID {
		t.Errorf("Expected related user preloaded, got %+v", unread)
	}

	assertKind(t, svc.MarkRead(ctx, other.ID, alice.ID), ErrNotFound)
	assertKind(t, svc.MarkRead(ctx, 999, alice.ID), ErrNotFound)

	for i := 0; i < 2; i++ {
		if err := svc.MarkRead(ctx, older.ID, alice.ID); err != nil {
			t.Fatalf("mark read #%d: %v", i+1, err)
		}
	}

	unread, _ = svc.Unread(ctx, alice.ID)
	if len(unread) != 1 || unread[0].ID != newer.ID {
		t.Errorf("Expected only the newer notification unread, got %+v", unread)
	}
}

package imagestore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CUknot/social_backend/config"
)

func TestNewWithoutCredentialsIsDisabled(t *testing.T) {
	store, err := New(config.CloudinaryConfig{Folder: "profile_pics"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := store.(Disabled); !ok {
		t.Fatalf("Expected Disabled store, got %T", store)
	}

	if _, err := store.Upload(context.Background(), strings.NewReader("x"), "id"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured from Upload, got %v", err)
	}
	if err := store.Delete(context.Background(), "id"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured from Delete, got %v", err)
	}
}

func TestNewWithCredentialsIsCloudinary(t *testing.T) {
	store, err := New(config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := store.(*Cloudinary); !ok {
		t.Errorf("Expected *Cloudinary store, got %T", store)
	}
}

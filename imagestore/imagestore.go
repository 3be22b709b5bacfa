// Package imagestore uploads and deletes images at the content-hosting service.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/CUknot/social_backend/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("image hosting is not configured")

type Image struct {
	URL      string
	PublicID string
}

type Store interface {
	Upload(ctx context.Context, file io.Reader, publicID string) (*Image, error)
	Delete(ctx context.Context, publicID string) error
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, publicID string) (*Image, error) {
	res, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
		Folder:   c.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("upload image: %s", res.Error.Message)
	}
	return &Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("delete image %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("delete image %s: %s", publicID, res.Error.Message)
	}
	return nil
}

// Disabled is used when no hosting credentials are configured; every call fails.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string) (*Image, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error {
	return ErrNotConfigured
}

// New returns the Cloudinary store when credentials are present
func New(cfg config.CloudinaryConfig) (Store, error) {
	if !cfg.Enabled() {
		return Disabled{}, nil
	}
	return NewCloudinary(cfg)
}

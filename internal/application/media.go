package application

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

// Upload directories, relative to the media root.
const (
	authorImageDir = "authors"
	postImageDir   = "posts"
	postGalleryDir = "posts/gallery"
)

// FileUpload is one file received with a request.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaStore persists bytes and returns the public URL.
type MediaStore interface {
	Store(ctx context.Context, data []byte, objectPath, contentType string) (string, error)
	// Delete removes an object; a missing object is not an error.
	Delete(ctx context.Context, objectPath string) error
}

// StoredImage is an image written to the media store.
type StoredImage struct {
	URL  string
	Path string
}

// ImageUploader validates, downsizes and stores uploaded images.
type ImageUploader struct {
	Media  MediaStore
	Images *helpers.ImageProcessor
}

func NewImageUploader(media MediaStore, images *helpers.ImageProcessor) *ImageUploader {
	return &ImageUploader{Media: media, Images: images}
}

// Prepare checks f before anything is written, so a bad image fails the
// whole mutation without side effects.
func (u *ImageUploader) Prepare(f *FileUpload) (*helpers.PreparedImage, error) {
	if u == nil || u.Media == nil {
		return nil, fmt.Errorf("%w: image uploads are not configured", ErrInvalidArgument)
	}
	img, err := u.Images.Prepare(f.Data)
	if err != nil {
		if errors.Is(err, helpers.ErrImageTooLarge) || errors.Is(err, helpers.ErrUnsupportedImage) {
			return nil, &InputError{Fields: map[string]string{"image": err.Error()}}
		}
		return nil, err
	}
	return img, nil
}

// Store writes a prepared image under dir with a fresh name.
func (u *ImageUploader) Store(ctx context.Context, dir string, img *helpers.PreparedImage) (*StoredImage, error) {
	name := path.Join(dir, uuid.NewString()+img.Ext)
	url, err := u.Media.Store(ctx, img.Data, name, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return &StoredImage{URL: url, Path: name}, nil
}

// Discard removes an image whose database write failed. A nil img is a
// no-op; a failed delete is only logged, the request already failed.
func (u *ImageUploader) Discard(ctx context.Context, img *StoredImage, logger logrus.FieldLogger) {
	if img == nil {
		return
	}
	if err := u.Media.Delete(ctx, img.Path); err != nil && logger != nil {
		logger.WithError(err).WithField("path", img.Path).Warn("orphaned upload left in media store")
	}
}

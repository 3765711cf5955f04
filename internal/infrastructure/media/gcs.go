package media

import (
	"bytes"
	"context"
	"errors"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

type GCSStorage struct {
	client *storage.Client
	bucket string
}

func NewGCSStorage(client *storage.Client, bucket string) (*GCSStorage, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Store(ctx context.Context, data []byte, objectPath, contentType string) (string, error) {
	key, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	return helpers.UploadObject(ctx, s.client, s.bucket, key, contentType, bytes.NewReader(data))
}

func (s *GCSStorage) Delete(ctx context.Context, objectPath string) error {
	key, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	return helpers.DeleteObject(ctx, s.client, s.bucket, key)
}

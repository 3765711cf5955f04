package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinIOStorage uploads into one bucket. Objects are addressed under
// PublicURL when set, otherwise under the client endpoint.
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOStorage(client *minio.Client, bucket, publicURL string) *MinIOStorage {
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &MinIOStorage{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *MinIOStorage) Store(ctx context.Context, data []byte, objectPath, contentType string) (string, error) {
	key, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}

func (s *MinIOStorage) Delete(ctx context.Context, objectPath string) error {
	key, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove from minio: %w", err)
	}
	return nil
}

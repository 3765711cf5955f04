// Package media persists uploaded files and returns their public URL.
package media

import (
	"context"
	"errors"
	"path"
	"strings"
)

var ErrInvalidPath = errors.New("invalid media path")

// Storage writes and removes data at a relative object path.
type Storage interface {
	Store(ctx context.Context, data []byte, objectPath, contentType string) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

var (
	_ Storage = (*LocalStorage)(nil)
	_ Storage = (*GCSStorage)(nil)
	_ Storage = (*MinIOStorage)(nil)
)

// cleanPath rejects absolute and escaping paths and normalises separators.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidPath
	}
	return c, nil
}

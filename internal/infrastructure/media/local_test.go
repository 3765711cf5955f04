package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Store(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "media")

	url, err := s.Store(context.Background(), []byte("abc"), "posts/2024/x.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/posts/2024/x.png", url)

	got, err := os.ReadFile(filepath.Join(root, "posts", "2024", "x.png"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	_, err = s.Store(context.Background(), []byte("def"), "posts/2024/x.png", "image/png")
	require.NoError(t, err)
	got, _ = os.ReadFile(filepath.Join(root, "posts", "2024", "x.png"))
	assert.Equal(t, "def", string(got))
}

func TestLocalStorage_Delete(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStorage(root, "media")
	ctx := context.Background()

	_, err := s.Store(ctx, []byte("abc"), "authors/a.png", "image/png")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "authors/a.png"))
	_, err = os.Stat(filepath.Join(root, "authors", "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, "authors/a.png"), "deleting twice is fine")
	assert.ErrorIs(t, s.Delete(ctx, "../outside.png"), ErrInvalidPath)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "/media/")
	for _, p := range []string{"", "/etc/passwd", "../x.png", "a/../../x.png", `..\x.png`} {
		_, err := s.Store(context.Background(), []byte("x"), p, "image/png")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestCleanPath(t *testing.T) {
	got, err := cleanPath("a//b/./c.png")
	require.NoError(t, err)
	assert.Equal(t, "a/b/c.png", got)
}

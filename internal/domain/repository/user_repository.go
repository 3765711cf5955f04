package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is still referenced")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// Delete fails with ErrReferenced while an author profile points at the user.
	Delete(ctx context.Context, id int64) error
}

package repository

import (
	"context"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

// AuthorFilter narrows List. Name matches first or last name, case-insensitive.
type AuthorFilter struct {
	Name string
}

type AuthorRepository interface {
	Create(ctx context.Context, a *entity.AuthorProfile) error
	GetByID(ctx context.Context, id int64) (*entity.AuthorProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.AuthorProfile, error)
	GetByUsername(ctx context.Context, username string) (*entity.AuthorProfile, error)
	List(ctx context.Context, f AuthorFilter) ([]entity.AuthorProfile, error)
	// ListByPostCount counts posts of every status.
	ListByPostCount(ctx context.Context, n int) ([]entity.AuthorProfile, error)
	// ListByPostBadge returns authors with at least one post tagged exactly badgeName.
	ListByPostBadge(ctx context.Context, badgeName string) ([]entity.AuthorProfile, error)
	Update(ctx context.Context, a *entity.AuthorProfile) error
}

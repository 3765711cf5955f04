package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

// PostFilter narrows List. Zero values are ignored; text fields are
// case-insensitive substring matches.
type PostFilter struct {
	Title       string
	Content     string
	AuthorName  string // username, first or last name
	AuthorID    int64
	PublishDate *time.Time
	IDs         []int64
	// PublishedAt restricts the result to posts published as of this instant.
	PublishedAt *time.Time
}

// PostRepository returns posts with Author, Badges and Gallery loaded.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post, badgeIDs []int64) error
	GetByID(ctx context.Context, id int64) (*entity.Post, error)
	List(ctx context.Context, f PostFilter) ([]entity.Post, error)
	// ListByBadge ignores publish status.
	ListByBadge(ctx context.Context, badgeName string) ([]entity.Post, error)
	// Update saves the post row. A nil badgeIDs keeps the current tags,
	// a non-nil one (even empty) replaces them.
	Update(ctx context.Context, p *entity.Post, badgeIDs []int64) error
	// UpdateWithOwner is Update plus renaming the user behind the post's
	// author, atomically. A taken username fails with ErrDuplicate and
	// leaves both rows as they were.
	UpdateWithOwner(ctx context.Context, p *entity.Post, badgeIDs []int64, username string) error
	// Delete removes the post; gallery images cascade.
	Delete(ctx context.Context, id int64) error
	AddImage(ctx context.Context, img *entity.Image) error
}

type BadgeRepository interface {
	Create(ctx context.Context, b *entity.Badge) error
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*entity.Badge, error)
	List(ctx context.Context, name string) ([]entity.Badge, error)
	Delete(ctx context.Context, id int64) error
}

package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-graph/internal/domain/repository"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

type AuthorService struct {
	Authors  repo.AuthorRepository
	Uploader *ImageUploader
	Logger   logrus.FieldLogger
}

func NewAuthorService(authors repo.AuthorRepository, uploader *ImageUploader, logger logrus.FieldLogger) *AuthorService {
	return &AuthorService{Authors: authors, Uploader: uploader, Logger: logger}
}

// UpdateAuthorInput uses nil for "leave unchanged".
type UpdateAuthorInput struct {
	Bio   *string     `json:"bio" validate:"omitnil,max=400"`
	Age   *int        `json:"age" validate:"omitnil,gte=0"`
	Image *FileUpload `json:"image" validate:"-"`
}

// Current returns the profile of the caller.
func (s *AuthorService) Current(ctx context.Context, id *entity.Identity) (*entity.AuthorProfile, error) {
	if id == nil {
		return nil, fmt.Errorf("%w: no author for anonymous caller", ErrNotFound)
	}
	a, err := s.Authors.GetByUserID(ctx, id.UserID)
	if err != nil {
		return nil, storeErr(err, "author profile")
	}
	return a, nil
}

// List returns every author, or those whose first or last name contains name.
func (s *AuthorService) List(ctx context.Context, name string) ([]entity.AuthorProfile, error) {
	return s.Authors.List(ctx, repo.AuthorFilter{Name: name})
}

// ByArticleCount returns authors with exactly n posts of any status.
func (s *AuthorService) ByArticleCount(ctx context.Context, n int) ([]entity.AuthorProfile, error) {
	if n < 0 {
		return []entity.AuthorProfile{}, nil
	}
	return s.Authors.ListByPostCount(ctx, n)
}

// ByArticleBadges returns authors who have, for every name, at least one
// post tagged with it.
func (s *AuthorService) ByArticleBadges(ctx context.Context, badgeNames []string) ([]entity.AuthorProfile, error) {
	if len(badgeNames) == 0 {
		return nil, fmt.Errorf("%w: badgeNames must not be empty", ErrInvalidArgument)
	}
	var result []entity.AuthorProfile
	for i, name := range badgeNames {
		authors, err := s.Authors.ListByPostBadge(ctx, name)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			result = authors
			continue
		}
		result = intersect(result, authors, func(a entity.AuthorProfile) int64 { return a.ID })
		if len(result) == 0 {
			break
		}
	}
	return result, nil
}

// Update applies in to the profile when the caller owns it. A non-owner gets
// the stored profile back with ok=false, whatever the input.
func (s *AuthorService) Update(ctx context.Context, id *entity.Identity, authorID int64, in UpdateAuthorInput) (*entity.AuthorProfile, bool, error) {
	if err := requireIdentity(id); err != nil {
		return nil, false, err
	}
	a, err := s.Authors.GetByID(ctx, authorID)
	if err != nil {
		return nil, false, storeErr(err, "author profile")
	}
	if !id.Owns(a.UserID) {
		return a, false, nil
	}
	if err := validation.Struct(in); err != nil {
		return nil, false, invalid(err)
	}

	var stored *StoredImage
	if in.Image != nil {
		img, err := s.Uploader.Prepare(in.Image)
		if err != nil {
			return nil, false, err
		}
		if stored, err = s.Uploader.Store(ctx, authorImageDir, img); err != nil {
			return nil, false, err
		}
		a.Image = stored.URL
	}
	if in.Bio != nil {
		bio := *in.Bio
		a.Bio = &bio
	}
	if in.Age != nil {
		age := *in.Age
		a.Age = &age
	}
	if err := s.Authors.Update(ctx, a); err != nil {
		s.Uploader.Discard(ctx, stored, s.Logger)
		return nil, false, storeErr(err, "author profile")
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"author_id": a.ID, "user_id": id.UserID}).Info("author profile updated")
	}
	return a, true, nil
}

// intersect keeps the elements of a whose key also appears in b, in a's order.
func intersect[T any](a, b []T, key func(T) int64) []T {
	seen := make(map[int64]struct{}, len(b))
	for _, v := range b {
		seen[key(v)] = struct{}{}
	}
	out := make([]T, 0, len(a))
	for _, v := range a {
		if _, ok := seen[key(v)]; ok {
			out = append(out, v)
		}
	}
	return out
}

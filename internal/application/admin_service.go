package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-graph/internal/domain/repository"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

// AdminService provisions accounts and badges out of band. Nothing here is
// reachable through the API.
type AdminService struct {
	Users   repo.UserRepository
	Authors repo.AuthorRepository
	Badges  repo.BadgeRepository
	Logger  logrus.FieldLogger
}

func NewAdminService(users repo.UserRepository, authors repo.AuthorRepository, badges repo.BadgeRepository, logger logrus.FieldLogger) *AdminService {
	return &AdminService{Users: users, Authors: authors, Badges: badges, Logger: logger}
}

type CreateUserInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,pwd"`
	FirstName string `json:"firstName" validate:"max=150"`
	LastName  string `json:"lastName" validate:"max=150"`
}

// CreateUser adds a user together with its author profile.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (*entity.AuthorProfile, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: in.Username, FirstName: in.FirstName, LastName: in.LastName, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, storeErr(err, fmt.Sprintf("user %q", in.Username))
	}
	a := &entity.AuthorProfile{UserID: u.ID}
	if err := s.Authors.Create(ctx, a); err != nil {
		// leave no user without a profile behind
		if derr := s.Users.Delete(ctx, u.ID); derr != nil {
			helpers.LogError(s.Logger, "rollback of user failed", derr, logrus.Fields{"user_id": u.ID})
		}
		return nil, storeErr(err, "author profile")
	}
	helpers.LogInfo(s.Logger, "user provisioned", logrus.Fields{"user_id": u.ID, "author_id": a.ID})
	return a, nil
}

// DeleteUser removes a user. It is refused with ErrConflict while the user
// still has an author profile.
func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return storeErr(err, fmt.Sprintf("user %q", username))
	}
	if err := s.Users.Delete(ctx, u.ID); err != nil {
		return storeErr(err, fmt.Sprintf("user %q", username))
	}
	helpers.LogInfo(s.Logger, "user deleted", logrus.Fields{"user_id": u.ID})
	return nil
}

type badgeInput struct {
	Name string `json:"name" validate:"required,badge"`
}

func (s *AdminService) CreateBadge(ctx context.Context, name string) (*entity.Badge, error) {
	if err := invalid(validation.Struct(badgeInput{Name: name})); err != nil {
		return nil, err
	}
	b := &entity.Badge{Name: name}
	if err := s.Badges.Create(ctx, b); err != nil {
		return nil, storeErr(err, fmt.Sprintf("badge %q", name))
	}
	return b, nil
}

func (s *AdminService) ListBadges(ctx context.Context, name string) ([]entity.Badge, error) {
	return s.Badges.List(ctx, name)
}

// DeleteBadge drops a badge and untags every post carrying it.
func (s *AdminService) DeleteBadge(ctx context.Context, name string) error {
	b, err := s.Badges.GetByName(ctx, name)
	if err != nil {
		return storeErr(err, fmt.Sprintf("badge %q", name))
	}
	return storeErr(s.Badges.Delete(ctx, b.ID), fmt.Sprintf("badge %q", name))
}

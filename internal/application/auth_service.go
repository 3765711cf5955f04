package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-graph/internal/domain/repository"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

// SessionStore tracks the live session id of each user. A nil store
// disables session checks: any correctly signed, unexpired token is accepted.
type SessionStore interface {
	Start(ctx context.Context, userID int64, username string) (string, error)
	Check(ctx context.Context, userID int64, sid string) error
	Rotate(ctx context.Context, userID int64, sid string) (string, error)
	Revoke(ctx context.Context, userID int64) error
}

type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Sessions SessionStore
	Logger   logrus.FieldLogger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, sessions SessionStore, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Sessions: sessions, Logger: logger}
}

type TokenPayload struct {
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	OrigIat  int64  `json:"origIat"`
}

type TokenResult struct {
	Token   string
	Payload TokenPayload
	// RefreshExpiresIn is the unix time after which the chain cannot be refreshed.
	RefreshExpiresIn int64
	ExpiresAt        time.Time
}

func (s *AuthService) result(token string, c *helpers.Claims) *TokenResult {
	return &TokenResult{
		Token:            token,
		Payload:          payloadOf(c),
		RefreshExpiresIn: s.JWT.RefreshDeadline(c).Unix(),
		ExpiresAt:        c.ExpiresAt.Time,
	}
}

func payloadOf(c *helpers.Claims) TokenPayload {
	return TokenPayload{Username: c.Username, Exp: c.ExpiresAt.Unix(), OrigIat: c.OrigIat}
}

// IssueToken checks the credentials and starts a new token chain.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (*TokenResult, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	sid := ""
	if s.Sessions != nil {
		if sid, err = s.Sessions.Start(ctx, u.ID, u.Username); err != nil {
			helpers.LogError(s.Logger, "start session failed", err, logrus.Fields{"user_id": u.ID})
			return nil, err
		}
	}
	tok, claims, err := s.JWT.Generate(u.ID, u.Username, sid, time.Time{})
	if err != nil {
		helpers.LogError(s.Logger, "generate token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	return s.result(tok, claims), nil
}

// claims parses token and confirms its session and user are still live.
func (s *AuthService) claims(ctx context.Context, token string) (*helpers.Claims, *entity.User, error) {
	c, err := s.JWT.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if s.Sessions != nil {
		if err := s.Sessions.Check(ctx, c.UserID, c.SessionID); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	u, err := s.Users.GetByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, nil, err
	}
	return c, u, nil
}

func (s *AuthService) VerifyToken(ctx context.Context, token string) (*TokenPayload, error) {
	c, _, err := s.claims(ctx, token)
	if err != nil {
		return nil, err
	}
	p := payloadOf(c)
	return &p, nil
}

// Authenticate resolves the caller behind token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.Identity, error) {
	c, u, err := s.claims(ctx, token)
	if err != nil {
		return nil, err
	}
	return &entity.Identity{UserID: u.ID, Username: u.Username, SessionID: c.SessionID}, nil
}

// RefreshToken issues a successor token with the same origIat and rotates
// the session, so the presented token stops verifying.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (*TokenResult, error) {
	c, u, err := s.claims(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.JWT.Now().After(s.JWT.RefreshDeadline(c)) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, helpers.ErrRefreshExpired)
	}
	sid := c.SessionID
	if s.Sessions != nil {
		if sid, err = s.Sessions.Rotate(ctx, c.UserID, c.SessionID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	tok, next, err := s.JWT.Refresh(c, u.Username, sid)
	if err != nil {
		if errors.Is(err, helpers.ErrRefreshExpired) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	return s.result(tok, next), nil
}

// RevokeToken ends the caller's session. Without a session store it is a no-op.
func (s *AuthService) RevokeToken(ctx context.Context, id *entity.Identity) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if s.Sessions == nil {
		return nil
	}
	if err := s.Sessions.Revoke(ctx, id.UserID); err != nil {
		helpers.LogError(s.Logger, "revoke session failed", err, logrus.Fields{"user_id": id.UserID})
		return err
	}
	return nil
}

package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrRefreshExpired = errors.New("refresh has expired")

// JWTManager signs and validates HS256 tokens. A token stays refreshable
// until RefreshExpiration has passed since the login that started its chain.
type JWTManager struct {
	Secret            []byte
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Now               func() time.Time
}

func NewJWTManager(secret string, expiration, refreshExpiration time.Duration) *JWTManager {
	return &JWTManager{
		Secret:            []byte(secret),
		Expiration:        expiration,
		RefreshExpiration: refreshExpiration,
		Now:               time.Now,
	}
}

type Claims struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	SessionID string `json:"sid,omitempty"`
	OrigIat   int64  `json:"origIat"`
	jwt.RegisteredClaims
}

// Generate issues a token. Pass a zero origIat to start a new refresh chain.
func (m *JWTManager) Generate(userID int64, username, sessionID string, origIat time.Time) (string, *Claims, error) {
	now := m.Now()
	if origIat.IsZero() {
		origIat = now
	}
	claims := &Claims{
		UserID:    userID,
		Username:  username,
		SessionID: sessionID,
		OrigIat:   origIat.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	if err != nil {
		return "", nil, err
	}
	return s, claims, nil
}

func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RefreshDeadline is the last instant at which the chain of c may be refreshed.
func (m *JWTManager) RefreshDeadline(c *Claims) time.Time {
	return time.Unix(c.OrigIat, 0).Add(m.RefreshExpiration)
}

// Refresh issues a successor of c in the same chain for username, which may
// differ from c.Username after a rename.
func (m *JWTManager) Refresh(c *Claims, username, sessionID string) (string, *Claims, error) {
	if m.Now().After(m.RefreshDeadline(c)) {
		return "", nil, ErrRefreshExpired
	}
	return m.Generate(c.UserID, username, sessionID, time.Unix(c.OrigIat, 0))
}

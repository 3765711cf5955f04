package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

type authFixture struct {
	*fixture
	clock    time.Time
	sessions *fakeSessions
	auth     *AuthService
}

func newAuthFixture(t *testing.T, withSessions bool) *authFixture {
	f := &authFixture{fixture: newFixture(t), clock: testToday}
	jwt := helpers.NewJWTManager("test-secret", 5*time.Minute, time.Hour)
	jwt.Now = func() time.Time { return f.clock }
	var sessions SessionStore
	if withSessions {
		f.sessions = &fakeSessions{}
		sessions = f.sessions
	}
	f.auth = NewAuthService(f.store.Users(), jwt, sessions, nil)
	return f
}

func TestAuthService_IssueToken(t *testing.T) {
	f := newAuthFixture(t, true)
	f.author("jdoe", "John", "Doe")

	res, err := f.auth.IssueToken(f.ctx, "jdoe", "secret-jdoe")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "jdoe", res.Payload.Username)
	assert.Equal(t, testToday.Unix(), res.Payload.OrigIat)
	assert.Equal(t, testToday.Add(5*time.Minute).Unix(), res.Payload.Exp)
	assert.Equal(t, testToday.Add(time.Hour).Unix(), res.RefreshExpiresIn)

	_, err = f.auth.IssueToken(f.ctx, "jdoe", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.IssueToken(f.ctx, "nobody", "secret-jdoe")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_VerifyAndAuthenticate(t *testing.T) {
	f := newAuthFixture(t, false)
	_, id := f.author("jdoe", "John", "Doe")
	res, err := f.auth.IssueToken(f.ctx, "jdoe", "secret-jdoe")
	require.NoError(t, err)

	p, err := f.auth.VerifyToken(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Payload, *p)

	got, err := f.auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, got.UserID)

	_, err = f.auth.VerifyToken(f.ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	f.clock = testToday.Add(6 * time.Minute)
	_, err = f.auth.VerifyToken(f.ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RefreshRotatesSession(t *testing.T) {
	f := newAuthFixture(t, true)
	f.author("jdoe", "John", "Doe")
	first, err := f.auth.IssueToken(f.ctx, "jdoe", "secret-jdoe")
	require.NoError(t, err)

	f.clock = testToday.Add(4 * time.Minute)
	second, err := f.auth.RefreshToken(f.ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.Payload.OrigIat, second.Payload.OrigIat)
	assert.Equal(t, f.clock.Add(5*time.Minute).Unix(), second.Payload.Exp)
	assert.Equal(t, first.RefreshExpiresIn, second.RefreshExpiresIn)

	_, err = f.auth.VerifyToken(f.ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "rotated session must reject the old token")
	_, err = f.auth.RefreshToken(f.ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth.VerifyToken(f.ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuthService_RefreshWindowCloses(t *testing.T) {
	f := newAuthFixture(t, false)
	f.author("jdoe", "John", "Doe")
	f.auth.JWT.Expiration = 2 * time.Hour
	res, err := f.auth.IssueToken(f.ctx, "jdoe", "secret-jdoe")
	require.NoError(t, err)

	f.clock = testToday.Add(61 * time.Minute)
	_, err = f.auth.RefreshToken(f.ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RefreshUsesCurrentUsername(t *testing.T) {
	f := newAuthFixture(t, false)
	_, id := f.author("jdoe", "John", "Doe")
	res, err := f.auth.IssueToken(f.ctx, "jdoe", "secret-jdoe")
	require.NoError(t, err)

	u, err := f.store.Users().GetByID(f.ctx, id.UserID)
	require.NoError(t, err)
	u.Username = "johnd"
	require.NoError(t, f.store.Users().Update(f.ctx, u))

	next, err := f.auth.RefreshToken(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "johnd", next.Payload.Username)
}

func TestAuthService_RevokeToken(t *testing.T) {
	f := newAuthFixture(t, true)
	f.author("jdoe", "John", "Doe")
	res, err := f.auth.IssueToken(f.ctx, "jdoe", "secret-jdoe")
	require.NoError(t, err)
	id, err := f.auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)

	assert.ErrorIs(t, f.auth.RevokeToken(f.ctx, nil), ErrUnauthorized)
	require.NoError(t, f.auth.RevokeToken(f.ctx, id))
	_, err = f.auth.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

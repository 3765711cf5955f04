package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type stubAuth map[string]*entity.Identity

func (s stubAuth) Authenticate(_ context.Context, token string) (*entity.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

type seen struct {
	identity  *entity.Identity
	token     string
	requestID string
	realIP    string
}

func serve(t *testing.T, req *http.Request, mw ...gin.HandlerFunc) (*httptest.ResponseRecorder, seen) {
	t.Helper()
	var got seen
	r := gin.New()
	r.Use(mw...)
	r.Any("/api", func(c *gin.Context) {
		ctx := c.Request.Context()
		got = seen{
			identity:  IdentityFrom(ctx),
			token:     TokenFrom(ctx),
			requestID: RequestIDFrom(ctx),
			realIP:    c.GetString(CtxRealIPKey),
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, got
}

func TestIdentity(t *testing.T) {
	ana := &entity.Identity{UserID: 1, Username: "ana"}
	auth := stubAuth{"good": ana}

	cases := []struct {
		name   string
		header string
		cookie string
		want   *entity.Identity
		token  string
	}{
		{"jwt prefix", "JWT good", "", ana, "good"},
		{"bearer prefix", "Bearer good", "", ana, "good"},
		{"prefix is case-insensitive", "bearer good", "", ana, "good"},
		{"cookie fallback", "", "good", ana, "good"},
		{"unknown scheme falls back to cookie", "Basic good", "good", ana, "good"},
		{"bad token stays anonymous", "JWT nope", "", nil, "nope"},
		{"no token", "", "", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: tc.cookie})
			}
			w, got := serve(t, req, Identity(auth, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, got.identity)
			assert.Equal(t, tc.token, got.token)
		})
	}
}

func TestIdentity_CustomPrefixes(t *testing.T) {
	auth := stubAuth{"good": {UserID: 1}}
	req := httptest.NewRequest(http.MethodPost, "/api", nil)
	req.Header.Set("Authorization", "JWT good")
	_, got := serve(t, req, Identity(auth, nil, "Token"))
	assert.Nil(t, got.identity)

	req.Header.Set("Authorization", "Token good")
	_, got = serve(t, req, Identity(auth, nil, "Token"))
	assert.NotNil(t, got.identity)
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	w, got := serve(t, req, RequestIDMiddleware())
	_, err := uuid.Parse(got.requestID)
	require.NoError(t, err)
	assert.Equal(t, got.requestID, w.Header().Get(RequestIDHeader))

	keep := uuid.NewString()
	req.Header.Set(RequestIDHeader, keep)
	_, got = serve(t, req, RequestIDMiddleware())
	assert.Equal(t, keep, got.requestID)

	req.Header.Set(RequestIDHeader, "<script>")
	_, got = serve(t, req, RequestIDMiddleware())
	assert.NotEqual(t, "<script>", got.requestID)
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	_, got := serve(t, req, RealIP())
	assert.Equal(t, "203.0.113.7", got.realIP)

	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	_, got = serve(t, req, RealIP())
	assert.Equal(t, "198.51.100.2", got.realIP)
}

func TestAccessLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	serve(t, req, RequestIDMiddleware(), AccessLog(logger))

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, e.Level)
	assert.Equal(t, http.StatusOK, e.Data["status"])
	assert.Equal(t, "/api", e.Data["path"])
	assert.NotEmpty(t, e.Data["request_id"])
}

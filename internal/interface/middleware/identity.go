package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

// Authenticator resolves a token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Identity, error)
}

// bearerToken reads "Authorization: <prefix> <token>" for any accepted
// prefix, falling back to the access_token cookie.
func bearerToken(c *gin.Context, prefixes []string) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok {
			for _, p := range prefixes {
				if strings.EqualFold(scheme, p) {
					return strings.TrimSpace(tok)
				}
			}
		}
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}

// Identity resolves the caller once per request. It never rejects: a missing
// or bad token leaves the request anonymous and each operation decides.
func Identity(auth Authenticator, logger logrus.FieldLogger, prefixes ...string) gin.HandlerFunc {
	if len(prefixes) == 0 {
		prefixes = []string{"JWT", "Bearer"}
	}
	return func(c *gin.Context) {
		token := bearerToken(c, prefixes)
		if token == "" {
			c.Next()
			return
		}
		ctx := withToken(c.Request.Context(), token)
		id, err := auth.Authenticate(ctx, token)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString(CtxRequestIDKey)).Debug("token rejected, continuing anonymously")
			}
		} else {
			ctx = WithIdentity(ctx, id)
			c.Set(CtxIdentityKey, id)
			c.Set(CtxUserIDKey, id.UserID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

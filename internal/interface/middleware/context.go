package middleware

import (
	"context"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

// Gin context keys.
const (
	CtxRequestIDKey = "request_id"
	CtxRealIPKey    = "real_ip"
	CtxIdentityKey  = "identity"
	CtxUserIDKey    = "userID"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	tokenKey
	requestIDKey
)

func WithIdentity(ctx context.Context, id *entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller, or nil for an anonymous request.
func IdentityFrom(ctx context.Context) *entity.Identity {
	id, _ := ctx.Value(identityKey).(*entity.Identity)
	return id
}

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom returns the raw token presented with the request, verified or not.
func TokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}

func RequestIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

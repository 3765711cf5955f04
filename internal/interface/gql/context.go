package gql

import (
	"context"
	"time"
)

// TokenCookie lets token mutations mirror the token into the response cookie.
type TokenCookie interface {
	SetToken(token string, exp time.Time)
	ClearToken()
}

type cookieKey struct{}

func WithTokenCookie(ctx context.Context, c TokenCookie) context.Context {
	return context.WithValue(ctx, cookieKey{}, c)
}

func tokenCookieFrom(ctx context.Context) TokenCookie {
	c, _ := ctx.Value(cookieKey{}).(TokenCookie)
	return c
}

package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
)

type obtainToken struct {
	Token            string                   `json:"token"`
	Payload          application.TokenPayload `json:"payload"`
	RefreshExpiresIn int64                    `json:"refreshExpiresIn"`
}

type verifyToken struct {
	Payload application.TokenPayload `json:"payload"`
}

type revokeToken struct {
	Ok bool `json:"ok"`
}

func (r *Resolver) authMutations() graphql.Fields {
	return graphql.Fields{
		"loginToken": &graphql.Field{
			Type:        graphql.NewNonNull(r.obtainTokenType),
			Description: "Exchange a username and password for a token.",
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				res, err := r.Auth.IssueToken(p.Context, stringArg(p, "username"), stringArg(p, "password"))
				if err != nil {
					return r.fail(p, err)
				}
				return r.issued(p, res), nil
			},
		},
		"verifyToken": &graphql.Field{
			Type: graphql.NewNonNull(r.verifyTokenType),
			Args: graphql.FieldConfigArgument{
				"token": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				payload, err := r.Auth.VerifyToken(p.Context, tokenArg(p))
				if err != nil {
					return r.fail(p, err)
				}
				return &verifyToken{Payload: *payload}, nil
			},
		},
		"refreshToken": &graphql.Field{
			Type: graphql.NewNonNull(r.obtainTokenType),
			Args: graphql.FieldConfigArgument{
				"token": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				res, err := r.Auth.RefreshToken(p.Context, tokenArg(p))
				if err != nil {
					return r.fail(p, err)
				}
				return r.issued(p, res), nil
			},
		},
		"revokeToken": &graphql.Field{
			Type:        graphql.NewNonNull(r.revokeTokenType),
			Description: "End the caller's session. Outstanding tokens stop verifying.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := r.Auth.RevokeToken(p.Context, middleware.IdentityFrom(p.Context)); err != nil {
					return r.fail(p, err)
				}
				if c := tokenCookieFrom(p.Context); c != nil {
					c.ClearToken()
				}
				return &revokeToken{Ok: true}, nil
			},
		},
	}
}

// tokenArg falls back to the token the request came with.
func tokenArg(p graphql.ResolveParams) string {
	if t := stringArg(p, "token"); t != "" {
		return t
	}
	return middleware.TokenFrom(p.Context)
}

func (r *Resolver) issued(p graphql.ResolveParams, res *application.TokenResult) *obtainToken {
	if c := tokenCookieFrom(p.Context); c != nil {
		c.SetToken(res.Token, res.ExpiresAt)
	}
	return &obtainToken{Token: res.Token, Payload: res.Payload, RefreshExpiresIn: res.RefreshExpiresIn}
}

package gql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/application"
)

// Resolver holds the services the schema resolves against, and the
// object types built from them.
type Resolver struct {
	Auth     *application.AuthService
	Authors  *application.AuthorService
	Articles *application.ArticleService
	Logger   logrus.FieldLogger

	userType          *graphql.Object
	authorType        *graphql.Object
	badgeType         *graphql.Object
	imageType         *graphql.Object
	postType          *graphql.Object
	tokenPayloadType  *graphql.Object
	obtainTokenType   *graphql.Object
	verifyTokenType   *graphql.Object
	revokeTokenType   *graphql.Object
	authorPayloadType *graphql.Object
	createPostType    *graphql.Object
	updatePostType    *graphql.Object
	deletePostType    *graphql.Object
	addImageType      *graphql.Object
	authorInput       *graphql.InputObject
	postInput         *graphql.InputObject
}

func NewResolver(auth *application.AuthService, authors *application.AuthorService, articles *application.ArticleService, logger logrus.FieldLogger) *Resolver {
	return &Resolver{Auth: auth, Authors: authors, Articles: articles, Logger: logger}
}

// NewSchema merges the author and article roots into one schema.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	r.buildTypes()

	query := graphql.Fields{}
	mutation := graphql.Fields{}
	for name, f := range r.authorQueries() {
		query[name] = f
	}
	for name, f := range r.articleQueries() {
		query[name] = f
	}
	for name, f := range r.authMutations() {
		mutation[name] = f
	}
	for name, f := range r.authorMutations() {
		mutation[name] = f
	}
	for name, f := range r.articleMutations() {
		mutation[name] = f
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: query}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutation}),
	})
}

func (r *Resolver) fail(p graphql.ResolveParams, err error) (interface{}, error) {
	return nil, toError(p.Context, r.Logger, err)
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func intArg(p graphql.ResolveParams, name string) (int, bool) {
	i, ok := p.Args[name].(int)
	return i, ok
}

func stringsArg(v interface{}) []string {
	raw, _ := v.([]interface{})
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func dateArg(p graphql.ResolveParams, name string) (time.Time, bool) {
	t, ok := p.Args[name].(time.Time)
	return t, ok
}

var idArg = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}

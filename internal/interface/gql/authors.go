package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
)

func (r *Resolver) authorQueries() graphql.Fields {
	list := nonNullList(r.authorType)
	return graphql.Fields{
		"currentAuthor": &graphql.Field{
			Type:        graphql.NewNonNull(r.authorType),
			Description: "The author profile of the caller.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				a, err := r.Authors.Current(p.Context, middleware.IdentityFrom(p.Context))
				if err != nil {
					return r.fail(p, err)
				}
				return viewAuthor(a), nil
			},
		},
		"authors": &graphql.Field{
			Type: list,
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				out, err := r.Authors.List(p.Context, stringArg(p, "name"))
				if err != nil {
					return r.fail(p, err)
				}
				return viewAuthors(out), nil
			},
		},
		"authorsByArticleCount": &graphql.Field{
			Type:        list,
			Description: "Authors with exactly this many posts, drafts included.",
			Args: graphql.FieldConfigArgument{
				"number": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				n, _ := intArg(p, "number")
				out, err := r.Authors.ByArticleCount(p.Context, n)
				if err != nil {
					return r.fail(p, err)
				}
				return viewAuthors(out), nil
			},
		},
		"authorsByArticleBadges": &graphql.Field{
			Type:        list,
			Description: "Authors having at least one post under every given badge.",
			Args: graphql.FieldConfigArgument{
				"badgeNames": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				out, err := r.Authors.ByArticleBadges(p.Context, stringsArg(p.Args["badgeNames"]))
				if err != nil {
					return r.fail(p, err)
				}
				return viewAuthors(out), nil
			},
		},
	}
}

func (r *Resolver) authorMutations() graphql.Fields {
	return graphql.Fields{
		"updateAuthor": &graphql.Field{
			Type: graphql.NewNonNull(r.authorPayloadType),
			Args: graphql.FieldConfigArgument{
				"id":    idArg,
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.authorInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id, _ := intArg(p, "id")
				in := authorInputFrom(p.Args["input"])
				a, ok, err := r.Authors.Update(p.Context, middleware.IdentityFrom(p.Context), int64(id), in)
				if err != nil {
					return r.fail(p, err)
				}
				return &authorPayload{Author: viewAuthor(a), Ok: ok}, nil
			},
		},
	}
}

func (r *Resolver) resolveAuthorPosts(p graphql.ResolveParams) (interface{}, error) {
	a, ok := p.Source.(*authorView)
	if !ok {
		if v, isVal := p.Source.(authorView); isVal {
			a = &v
		} else {
			return []*postView{}, nil
		}
	}
	out, err := r.Articles.PostsByAuthor(p.Context, a.ID)
	if err != nil {
		return r.fail(p, err)
	}
	return viewPosts(out), nil
}

func authorInputFrom(v interface{}) application.UpdateAuthorInput {
	m, _ := v.(map[string]interface{})
	var in application.UpdateAuthorInput
	if s, ok := m["bio"].(string); ok {
		in.Bio = &s
	}
	if i, ok := m["age"].(int); ok {
		in.Age = &i
	}
	if f, ok := m["image"].(*application.FileUpload); ok {
		in.Image = f
	}
	return in
}

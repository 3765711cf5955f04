package gql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
)

func (r *Resolver) articleQueries() graphql.Fields {
	posts := nonNullList(r.postType)
	return graphql.Fields{
		"badges": &graphql.Field{
			Type: nonNullList(r.badgeType),
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				out, err := r.Articles.Badges(p.Context, stringArg(p, "name"))
				if err != nil {
					return r.fail(p, err)
				}
				return viewBadges(out), nil
			},
		},
		"posts": &graphql.Field{
			Type:        posts,
			Description: "Published posts, optionally filtered by title.",
			Args: graphql.FieldConfigArgument{
				"title": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: r.postList(func(p graphql.ResolveParams) ([]entity.Post, error) {
				return r.Articles.Posts(p.Context, stringArg(p, "title"))
			}),
		},
		"postsByContent": &graphql.Field{
			Type: posts,
			Args: graphql.FieldConfigArgument{
				"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: r.postList(func(p graphql.ResolveParams) ([]entity.Post, error) {
				return r.Articles.PostsByContent(p.Context, stringArg(p, "content"))
			}),
		},
		"postsByPublishDate": &graphql.Field{
			Type: posts,
			Args: graphql.FieldConfigArgument{
				"publishDate": &graphql.ArgumentConfig{Type: graphql.NewNonNull(Date)},
			},
			Resolve: r.postList(func(p graphql.ResolveParams) ([]entity.Post, error) {
				day, _ := dateArg(p, "publishDate")
				return r.Articles.PostsByPublishDate(p.Context, day)
			}),
		},
		"postsByAuthorName": &graphql.Field{
			Type: posts,
			Args: graphql.FieldConfigArgument{
				"authorName": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: r.postList(func(p graphql.ResolveParams) ([]entity.Post, error) {
				return r.Articles.PostsByAuthorName(p.Context, stringArg(p, "authorName"))
			}),
		},
		"postsByBadges": &graphql.Field{
			Type:        posts,
			Description: "Posts of any status carrying every given badge.",
			Args: graphql.FieldConfigArgument{
				"badgeNames": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			},
			Resolve: r.postList(func(p graphql.ResolveParams) ([]entity.Post, error) {
				return r.Articles.PostsByBadges(p.Context, stringsArg(p.Args["badgeNames"]))
			}),
		},
		"searchPosts": &graphql.Field{
			Type: posts,
			Args: graphql.FieldConfigArgument{
				"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"size":  &graphql.ArgumentConfig{Type: graphql.Int},
			},
			Resolve: r.postList(func(p graphql.ResolveParams) ([]entity.Post, error) {
				size, _ := intArg(p, "size")
				return r.Articles.Search(p.Context, stringArg(p, "query"), size)
			}),
		},
	}
}

func (r *Resolver) postList(fetch func(graphql.ResolveParams) ([]entity.Post, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		out, err := fetch(p)
		if err != nil {
			return r.fail(p, err)
		}
		return viewPosts(out), nil
	}
}

func (r *Resolver) articleMutations() graphql.Fields {
	return graphql.Fields{
		"createPost": &graphql.Field{
			Type: graphql.NewNonNull(r.createPostType),
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.postInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				post, ok, err := r.Articles.Create(p.Context, middleware.IdentityFrom(p.Context), postInputFrom(p.Args["input"]))
				if err != nil {
					return r.fail(p, err)
				}
				return &postPayload{Post: viewPost(post), Ok: ok}, nil
			},
		},
		"updatePost": &graphql.Field{
			Type: graphql.NewNonNull(r.updatePostType),
			Args: graphql.FieldConfigArgument{
				"id":    idArg,
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(r.postInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id, _ := intArg(p, "id")
				post, ok, err := r.Articles.Update(p.Context, middleware.IdentityFrom(p.Context), int64(id), postInputFrom(p.Args["input"]))
				if err != nil {
					return r.fail(p, err)
				}
				return &postPayload{Post: viewPost(post), Ok: ok}, nil
			},
		},
		"deletePost": &graphql.Field{
			Type: graphql.NewNonNull(r.deletePostType),
			Args: graphql.FieldConfigArgument{
				"postId": idArg,
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id, _ := intArg(p, "postId")
				post, ok, err := r.Articles.Delete(p.Context, middleware.IdentityFrom(p.Context), int64(id))
				if err != nil {
					return r.fail(p, err)
				}
				return &postPayload{Post: viewPost(post), Ok: ok}, nil
			},
		},
		"addPostImage": &graphql.Field{
			Type:        graphql.NewNonNull(r.addImageType),
			Description: "Append an image to the gallery of a post.",
			Args: graphql.FieldConfigArgument{
				"postId": idArg,
				"image":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(Upload)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id, _ := intArg(p, "postId")
				f, _ := p.Args["image"].(*application.FileUpload)
				img, ok, err := r.Articles.AddImage(p.Context, middleware.IdentityFrom(p.Context), int64(id), f)
				if err != nil {
					return r.fail(p, err)
				}
				return &imagePayload{Image: viewImage(img), Ok: ok}, nil
			},
		},
	}
}

// postInputFrom keeps only the keys present in the request.
func postInputFrom(v interface{}) application.PostInput {
	m, _ := v.(map[string]interface{})
	var in application.PostInput
	if s, ok := m["title"].(string); ok {
		in.Title = &s
	}
	if s, ok := m["content"].(string); ok {
		in.Content = &s
	}
	if s, ok := m["authorUsername"].(string); ok {
		in.AuthorUsername = &s
	}
	if st, ok := m["publishStatus"].(entity.PublishStatus); ok {
		in.PublishStatus = &st
	}
	if d, ok := m["publishDate"].(time.Time); ok {
		in.PublishDate = &d
	}
	if raw, ok := m["badgeNames"]; ok && raw != nil {
		names := stringsArg(raw)
		in.BadgeNames = &names
	}
	if f, ok := m["image"].(*application.FileUpload); ok {
		in.Image = f
	}
	return in
}

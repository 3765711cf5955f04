package gql

import (
	"github.com/graphql-go/graphql"
)

func (r *Resolver) buildTypes() {
	r.userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"firstName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"lastName":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	r.badgeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Badge",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	r.imageType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"postId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"image":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	// Author and Post refer to each other, so posts is added afterwards.
	r.authorType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"user":  &graphql.Field{Type: graphql.NewNonNull(r.userType)},
			"bio":   &graphql.Field{Type: graphql.String},
			"age":   &graphql.Field{Type: graphql.Int},
			"image": &graphql.Field{Type: graphql.String},
		},
	})

	r.postType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"content":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"author":        &graphql.Field{Type: graphql.NewNonNull(r.authorType)},
			"publishStatus": &graphql.Field{Type: graphql.NewNonNull(PublishStatusEnum)},
			"createdOn":     &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"updatedOn":     &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"publishDate":   &graphql.Field{Type: Date},
			"image":         &graphql.Field{Type: graphql.String},
			"badges":        &graphql.Field{Type: nonNullList(r.badgeType)},
			"imagesGallery": &graphql.Field{Type: nonNullList(r.imageType)},
		},
	})

	r.authorType.AddFieldConfig("posts", &graphql.Field{
		Type:        nonNullList(r.postType),
		Description: "Published posts of this author.",
		Resolve:     r.resolveAuthorPosts,
	})

	r.tokenPayloadType = graphql.NewObject(graphql.ObjectConfig{
		Name: "TokenPayload",
		Fields: graphql.Fields{
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"exp":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"origIat":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	r.obtainTokenType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ObtainToken",
		Fields: graphql.Fields{
			"token":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"payload":          &graphql.Field{Type: graphql.NewNonNull(r.tokenPayloadType)},
			"refreshExpiresIn": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	r.verifyTokenType = graphql.NewObject(graphql.ObjectConfig{
		Name: "VerifyToken",
		Fields: graphql.Fields{
			"payload": &graphql.Field{Type: graphql.NewNonNull(r.tokenPayloadType)},
		},
	})

	r.revokeTokenType = graphql.NewObject(graphql.ObjectConfig{
		Name: "RevokeToken",
		Fields: graphql.Fields{
			"ok": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	r.authorPayloadType = payloadType("UpdateAuthor", "author", r.authorType)
	r.createPostType = payloadType("CreatePost", "post", r.postType)
	r.updatePostType = payloadType("UpdatePost", "post", r.postType)
	r.deletePostType = payloadType("DeletePost", "post", r.postType)
	r.addImageType = payloadType("AddPostImage", "image", r.imageType)

	r.authorInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AuthorInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"bio":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"age":   &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"image": &graphql.InputObjectFieldConfig{Type: Upload},
		},
	})

	r.postInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PostInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":          &graphql.InputObjectFieldConfig{Type: graphql.String},
			"content":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"authorUsername": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"publishStatus":  &graphql.InputObjectFieldConfig{Type: PublishStatusEnum},
			"publishDate":    &graphql.InputObjectFieldConfig{Type: Date},
			"badgeNames":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			"image":          &graphql.InputObjectFieldConfig{Type: Upload},
		},
	})
}

func nonNullList(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

// payloadType builds the {<field>, ok} result of a guarded mutation.
func payloadType(name, field string, t graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			field: &graphql.Field{Type: t},
			"ok":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
}

package gql

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/infrastructure/memory"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

var today = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

type memMedia struct{ stored []string }

func (m *memMedia) Store(_ context.Context, _ []byte, objectPath, _ string) (string, error) {
	m.stored = append(m.stored, objectPath)
	return "/media/" + objectPath, nil
}

func (m *memMedia) Delete(context.Context, string) error { return nil }

type cookieSink struct {
	token   string
	cleared bool
}

func (c *cookieSink) SetToken(token string, _ time.Time) { c.token = token }
func (c *cookieSink) ClearToken()                       { c.cleared = true }

type env struct {
	t      *testing.T
	store  *memory.Store
	media  *memMedia
	schema graphql.Schema
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return today })
	logger, _ := test.NewNullLogger()
	media := &memMedia{}
	uploader := application.NewImageUploader(media, helpers.NewImageProcessor(1<<20, 64))

	jwt := helpers.NewJWTManager("test-secret", 5*time.Minute, time.Hour)
	auth := application.NewAuthService(store.Users(), jwt, nil, logger)
	articles := application.NewArticleService(store.Users(), store.Authors(), store.Posts(), store.Badges(), uploader, nil, logger)
	articles.Now = func() time.Time { return today }

	schema, err := NewSchema(NewResolver(auth, application.NewAuthorService(store.Authors(), uploader, logger), articles, logger))
	require.NoError(t, err)
	return &env{t: t, store: store, media: media, schema: schema}
}

func (e *env) author(username string) (*entity.AuthorProfile, *entity.Identity) {
	e.t.Helper()
	ctx := context.Background()
	hash, err := helpers.HashPassword("pw-" + username)
	require.NoError(e.t, err)
	u := &entity.User{Username: username, FirstName: "First " + username, LastName: "Last", Password: hash}
	require.NoError(e.t, e.store.Users().Create(ctx, u))
	a := &entity.AuthorProfile{UserID: u.ID}
	require.NoError(e.t, e.store.Authors().Create(ctx, a))
	return a, &entity.Identity{UserID: u.ID, Username: username}
}

func (e *env) badge(name string) {
	e.t.Helper()
	require.NoError(e.t, e.store.Badges().Create(context.Background(), &entity.Badge{Name: name}))
}

func (e *env) post(a *entity.AuthorProfile, title string, status entity.PublishStatus, day *time.Time) *entity.Post {
	e.t.Helper()
	p := &entity.Post{Title: title, Content: "about " + title, AuthorID: a.ID, PublishStatus: status, PublishDate: day}
	require.NoError(e.t, e.store.Posts().Create(context.Background(), p, nil))
	return p
}

func (e *env) do(ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	e.t.Helper()
	return graphql.Do(graphql.Params{Schema: e.schema, RequestString: query, VariableValues: vars, Context: ctx})
}

func data(t *testing.T, res *graphql.Result, path ...string) interface{} {
	t.Helper()
	require.Empty(t, res.Errors)
	var cur interface{} = res.Data
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		require.True(t, ok, "no object at %q", key)
		cur = m[key]
	}
	return cur
}

func errCode(t *testing.T, res *graphql.Result) string {
	t.Helper()
	require.NotEmpty(t, res.Errors)
	code, _ := res.Errors[0].Extensions["code"].(string)
	return code
}

func daysFrom(offset int) *time.Time {
	d := entity.DateOf(today).AddDate(0, 0, offset)
	return &d
}

func pngFile(t *testing.T) *application.FileUpload {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return &application.FileUpload{Filename: "a.png", ContentType: "image/png", Data: buf.Bytes()}
}

func TestLoginAndVerifyToken(t *testing.T) {
	e := newEnv(t)
	e.author("jdoe")
	sink := &cookieSink{}
	ctx := WithTokenCookie(context.Background(), sink)

	res := e.do(ctx, `mutation { loginToken(username: "jdoe", password: "pw-jdoe") { token payload { username } refreshExpiresIn } }`, nil)
	token := data(t, res, "loginToken", "token").(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, sink.token)
	assert.Equal(t, "jdoe", data(t, res, "loginToken", "payload", "username"))

	res = e.do(ctx, `mutation($t: String) { verifyToken(token: $t) { payload { username origIat } } }`, map[string]interface{}{"t": token})
	assert.Equal(t, "jdoe", data(t, res, "verifyToken", "payload", "username"))
}

func TestLoginBadPassword(t *testing.T) {
	e := newEnv(t)
	e.author("jdoe")
	res := e.do(context.Background(), `mutation { loginToken(username: "jdoe", password: "nope") { token } }`, nil)
	assert.Equal(t, CodeInvalidCredentials, errCode(t, res))
}

func TestVerifyGarbageToken(t *testing.T) {
	e := newEnv(t)
	res := e.do(context.Background(), `mutation { verifyToken(token: "garbage") { payload { username } } }`, nil)
	assert.Equal(t, CodeInvalidToken, errCode(t, res))
}

func TestMutationsNeedIdentity(t *testing.T) {
	e := newEnv(t)
	e.author("jdoe")
	res := e.do(context.Background(), `mutation { createPost(input: {title: "t", content: "c", authorUsername: "jdoe"}) { ok } }`, nil)
	assert.Equal(t, CodeUnauthorized, errCode(t, res))

	res = e.do(context.Background(), `{ authorsByArticleCount(number: 0) { id } }`, nil)
	assert.Len(t, data(t, res, "authorsByArticleCount"), 1)
}

func TestCreatePostAndReadBack(t *testing.T) {
	e := newEnv(t)
	_, id := e.author("jdoe")
	e.badge("go")
	ctx := middleware.WithIdentity(context.Background(), id)

	res := e.do(ctx, `mutation {
		createPost(input: {title: "Hello", content: "World", authorUsername: "jdoe", publishStatus: PUBLISH, publishDate: "2024-06-14", badgeNames: ["go"]}) {
			ok
			post { id title publishStatus publishDate badges { name } author { user { username } } }
		}
	}`, nil)
	assert.Equal(t, true, data(t, res, "createPost", "ok"))
	assert.Equal(t, "PUBLISH", data(t, res, "createPost", "post", "publishStatus"))
	assert.Equal(t, "2024-06-14", data(t, res, "createPost", "post", "publishDate"))
	assert.Equal(t, "jdoe", data(t, res, "createPost", "post", "author", "user", "username"))

	res = e.do(context.Background(), `{ posts { title badges { name } } }`, nil)
	posts := data(t, res, "posts").([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].(map[string]interface{})["title"])
}

func TestCreatePostMissingFields(t *testing.T) {
	e := newEnv(t)
	_, id := e.author("jdoe")
	ctx := middleware.WithIdentity(context.Background(), id)

	res := e.do(ctx, `mutation { createPost(input: {title: "only"}) { ok } }`, nil)
	assert.Equal(t, CodeInvalidArgument, errCode(t, res))
	fields, _ := res.Errors[0].Extensions["fields"].(map[string]string)
	assert.Contains(t, fields, "content")
	assert.Contains(t, fields, "authorUsername")
}

func TestUpdatePostByOtherUserIsRefused(t *testing.T) {
	e := newEnv(t)
	owner, _ := e.author("owner")
	_, intruder := e.author("intruder")
	p := e.post(owner, "Mine", entity.StatusPublish, daysFrom(-1))
	ctx := middleware.WithIdentity(context.Background(), intruder)

	res := e.do(ctx, `mutation($id: Int!) { updatePost(id: $id, input: {title: "Yours"}) { ok post { title } } }`,
		map[string]interface{}{"id": int(p.ID)})
	assert.Equal(t, false, data(t, res, "updatePost", "ok"))
	assert.Equal(t, "Mine", data(t, res, "updatePost", "post", "title"))
}

func TestAuthorPostsHidesDrafts(t *testing.T) {
	e := newEnv(t)
	a, _ := e.author("jdoe")
	e.post(a, "Live", entity.StatusPublish, daysFrom(0))
	e.post(a, "Draft", entity.StatusDraft, daysFrom(0))
	e.post(a, "Scheduled", entity.StatusPublish, daysFrom(3))

	res := e.do(context.Background(), `{ authors { user { username } posts { title } } }`, nil)
	authors := data(t, res, "authors").([]interface{})
	require.Len(t, authors, 1)
	posts := authors[0].(map[string]interface{})["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "Live", posts[0].(map[string]interface{})["title"])

	res = e.do(context.Background(), `{ authorsByArticleCount(number: 3) { user { username } } }`, nil)
	assert.Len(t, data(t, res, "authorsByArticleCount"), 1)
}

func TestPostsByBadgesEmptyList(t *testing.T) {
	e := newEnv(t)
	res := e.do(context.Background(), `{ postsByBadges(badgeNames: []) { title } }`, nil)
	assert.Equal(t, CodeInvalidArgument, errCode(t, res))
}

func TestPostsByBadgesIncludesDrafts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _ := e.author("jdoe")
	e.badge("go")
	b, err := e.store.Badges().GetByName(ctx, "go")
	require.NoError(t, err)
	draft := &entity.Post{Title: "Draft", Content: "c", AuthorID: a.ID, PublishStatus: entity.StatusDraft}
	require.NoError(t, e.store.Posts().Create(ctx, draft, []int64{b.ID}))

	res := e.do(ctx, `{ postsByBadges(badgeNames: ["go"]) { title publishStatus } }`, nil)
	posts := data(t, res, "postsByBadges").([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "DRAFT", posts[0].(map[string]interface{})["publishStatus"])

	field := e.schema.QueryType().Fields()["postsByBadges"]
	require.NotNil(t, field)
	assert.Contains(t, field.Description, "any status")
}

func TestCurrentAuthorAnonymous(t *testing.T) {
	e := newEnv(t)
	res := e.do(context.Background(), `{ currentAuthor { id } }`, nil)
	assert.Equal(t, CodeNotFound, errCode(t, res))
}

func TestUpdateAuthorWithImage(t *testing.T) {
	e := newEnv(t)
	a, id := e.author("jdoe")
	ctx := middleware.WithIdentity(context.Background(), id)

	res := e.do(ctx, `mutation($id: Int!, $in: AuthorInput!) { updateAuthor(id: $id, input: $in) { ok author { bio age image } } }`,
		map[string]interface{}{
			"id": int(a.ID),
			"in": map[string]interface{}{"bio": "hi", "age": 30, "image": pngFile(t)},
		})
	assert.Equal(t, true, data(t, res, "updateAuthor", "ok"))
	assert.Equal(t, "hi", data(t, res, "updateAuthor", "author", "bio"))
	assert.Equal(t, 30, data(t, res, "updateAuthor", "author", "age"))
	assert.Contains(t, data(t, res, "updateAuthor", "author", "image"), "/media/authors/")
	require.Len(t, e.media.stored, 1)
}

func TestAddImageAndDeletePost(t *testing.T) {
	e := newEnv(t)
	a, id := e.author("jdoe")
	p := e.post(a, "Gallery", entity.StatusPublish, daysFrom(-2))
	ctx := middleware.WithIdentity(context.Background(), id)

	res := e.do(ctx, `mutation($id: Int!, $f: Upload!) { addPostImage(postId: $id, image: $f) { ok image { image } } }`,
		map[string]interface{}{"id": int(p.ID), "f": pngFile(t)})
	assert.Equal(t, true, data(t, res, "addPostImage", "ok"))
	assert.Equal(t, 1, e.store.Posts().ImageCount(p.ID))

	res = e.do(ctx, `mutation($id: Int!) { deletePost(postId: $id) { ok post { title imagesGallery { image } } } }`,
		map[string]interface{}{"id": int(p.ID)})
	assert.Equal(t, true, data(t, res, "deletePost", "ok"))
	assert.Equal(t, "Gallery", data(t, res, "deletePost", "post", "title"))
	assert.Equal(t, 0, e.store.Posts().ImageCount(p.ID))
}

func TestSearchWithoutIndex(t *testing.T) {
	e := newEnv(t)
	res := e.do(context.Background(), `{ searchPosts(query: "go") { title } }`, nil)
	assert.Empty(t, data(t, res, "searchPosts"))
}

package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/interface/gql"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

// echoSchema reports what reached the resolvers.
func echoSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"hello": &graphql.Field{
					Type: graphql.String,
					Args: graphql.FieldConfigArgument{"name": &graphql.ArgumentConfig{Type: graphql.String}},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						name, _ := p.Args["name"].(string)
						return "hello " + name, nil
					},
				},
			},
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"upload": &graphql.Field{
					Type: graphql.String,
					Args: graphql.FieldConfigArgument{"file": &graphql.ArgumentConfig{Type: graphql.NewNonNull(gql.Upload)}},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						f := p.Args["file"].(*application.FileUpload)
						return f.Filename + ":" + string(f.Data), nil
					},
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func serve(t *testing.T, h *GraphQLHandler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/api", h.Serve)
	r.GET("/api/healthz", h.Healthz)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func multipartRequest(t *testing.T, operations, fileMap string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("operations", operations))
	require.NoError(t, mw.WriteField("map", fileMap))
	for key, content := range files {
		fw, err := mw.CreateFormFile(key, key+".txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestServeJSON(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{"query":"query($n: String){ hello(name: $n) }","variables":{"n":"ana"}}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(t, h, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello ana", decode(t, w)["data"].(map[string]interface{})["hello"])
}

func TestServeExecutionErrorIsOK(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{"query":"{ nope }"}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(t, h, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["errors"])
}

func TestServeMissingQuery(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{"variables":{}}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(t, h, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestServeMultipartUpload(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 1<<20)
	req := multipartRequest(t,
		`{"query":"mutation($f: Upload!){ upload(file: $f) }","variables":{"f":null}}`,
		`{"0":["variables.f"]}`,
		map[string]string{"0": "bytes"})

	w := serve(t, h, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.txt:bytes", decode(t, w)["data"].(map[string]interface{})["upload"])
}

func TestServeMultipartTooLarge(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 4)
	req := multipartRequest(t,
		`{"query":"mutation($f: Upload!){ upload(file: $f) }","variables":{"f":null}}`,
		`{"0":["variables.f"]}`,
		map[string]string{"0": "too many bytes"})

	w := serve(t, h, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeMultipartBadPath(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 1<<20)
	req := multipartRequest(t,
		`{"query":"mutation($f: Upload!){ upload(file: $f) }","variables":{"f":null}}`,
		`{"0":["variables.missing.deep"]}`,
		map[string]string{"0": "x"})

	w := serve(t, h, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPath(t *testing.T) {
	vars := map[string]interface{}{
		"input": map[string]interface{}{"image": nil},
		"files": []interface{}{nil, nil},
	}
	require.NoError(t, setPath(vars, []string{"input", "image"}, "a"))
	require.NoError(t, setPath(vars, []string{"files", "1"}, "b"))
	assert.Equal(t, "a", vars["input"].(map[string]interface{})["image"])
	assert.Equal(t, []interface{}{nil, "b"}, vars["files"])
	assert.Error(t, setPath(vars, []string{"files", "7"}, "c"))
}

func TestTokenCookie(t *testing.T) {
	r := gin.New()
	m := helpers.NewCookie("localhost", false)
	r.GET("/", func(c *gin.Context) {
		ginCookies{c: c, m: m}.SetToken("tok", time.Now().Add(time.Minute))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Header().Get("Set-Cookie"), helpers.AccessTokenCookie+"=tok")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")
}

func TestHealthz(t *testing.T) {
	h := NewGraphQLHandler(echoSchema(t), nil, "localhost", false, 0)
	w := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

type recorded struct {
	method, path string
	body         map[string]any
}

func fakeES(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		reply(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &calls
}

func TestPostIndex_Index(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := NewPostIndex(es, "posts")
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := &entity.Post{
		ID: 12, Title: "Go", Content: "body", PublishStatus: entity.StatusPublish, PublishDate: &day,
		Author: entity.AuthorProfile{User: entity.User{Username: "ana"}},
		Badges: []entity.Badge{{ID: 1, Name: "go"}},
	}

	require.NoError(t, idx.Index(context.Background(), p))
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/posts/_doc/12", c.path)
	assert.Equal(t, "Go", c.body["title"])
	assert.Equal(t, "ana", c.body["author"])
	assert.Equal(t, "2024-05-01", c.body["publish_date"])
	assert.Equal(t, []any{"go"}, c.body["badges"])
}

func TestPostIndex_RemoveIgnoresMissing(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	require.NoError(t, NewPostIndex(es, "posts").Remove(context.Background(), 3))
	assert.Equal(t, "/posts/_doc/3", (*calls)[0].path)
}

func TestPostIndex_Search(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"9"},{"_id":"bogus"},{"_id":"4"}]}}`))
	})
	ids, err := NewPostIndex(es, "posts").Search(context.Background(), "golang", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 4}, ids)
	assert.Equal(t, "/posts/_search", (*calls)[0].path)
	assert.EqualValues(t, 5, (*calls)[0].body["size"])
}

func TestPostIndex_SearchError(t *testing.T) {
	es, _ := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := NewPostIndex(es, "posts").Search(context.Background(), "x", 5)
	assert.Error(t, err)
}

func TestPostIndex_EnsureIndexCreatesMissing(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})
	require.NoError(t, NewPostIndex(es, "posts").EnsureIndex(context.Background()))
	require.Len(t, *calls, 2)
	create := (*calls)[1]
	assert.Equal(t, http.MethodPut, create.method)
	assert.Equal(t, "/posts", create.path)
	assert.Contains(t, create.body, "mappings")
}

func TestPostIndex_EnsureIndexKeepsExisting(t *testing.T) {
	es, calls := fakeES(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, NewPostIndex(es, "posts").EnsureIndex(context.Background()))
	assert.Len(t, *calls, 1)
}

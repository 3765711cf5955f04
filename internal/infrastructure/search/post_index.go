// Package search mirrors posts into an Elasticsearch index for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

type PostIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewPostIndex(es *elasticsearch.Client, index string) *PostIndex {
	return &PostIndex{es: es, index: index}
}

type postDoc struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Author        string   `json:"author"`
	Badges        []string `json:"badges"`
	PublishStatus string   `json:"publish_status"`
	PublishDate   *string  `json:"publish_date,omitempty"`
	UpdatedOn     string   `json:"updated_on"`
}

func docFor(p *entity.Post) postDoc {
	d := postDoc{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Author:        p.Author.User.Username,
		Badges:        make([]string, 0, len(p.Badges)),
		PublishStatus: string(p.PublishStatus),
		UpdatedOn:     p.UpdatedOn.UTC().Format(time.RFC3339Nano),
	}
	for _, b := range p.Badges {
		d.Badges = append(d.Badges, b.Name)
	}
	if p.PublishDate != nil {
		s := p.PublishDate.Format(time.DateOnly)
		d.PublishDate = &s
	}
	return d
}

var postMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":             map[string]any{"type": "long"},
			"title":          map[string]any{"type": "text"},
			"content":        map[string]any{"type": "text"},
			"author":         map[string]any{"type": "keyword"},
			"badges":         map[string]any{"type": "keyword"},
			"publish_status": map[string]any{"type": "keyword"},
			"publish_date":   map[string]any{"type": "date", "format": "yyyy-MM-dd"},
			"updated_on":     map[string]any{"type": "date"},
		},
	},
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *PostIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	if res.StatusCode != 404 {
		return fmt.Errorf("es exists: %s", res.Status())
	}

	b, _ := json.Marshal(postMapping)
	res, err = x.es.Indices.Create(x.index, x.es.Indices.Create.WithContext(c), x.es.Indices.Create.WithBody(bytes.NewReader(b)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

func (x *PostIndex) Index(ctx context.Context, p *entity.Post) error {
	b, err := json.Marshal(docFor(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(p.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *PostIndex) Remove(ctx context.Context, postID int64) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: strconv.FormatInt(postID, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search returns ids of published posts matching q, best match first.
func (x *PostIndex) Search(ctx context.Context, q string, size int) ([]int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "content", "author", "badges"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"publish_status": string(entity.StatusPublish)}},
					map[string]any{"range": map[string]any{"publish_date": map[string]any{"lte": "now/d"}}},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

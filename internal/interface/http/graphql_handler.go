package handlers

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/interface/gql"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
	"github.com/oksasatya/go-blog-graph/pkg/response"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

// Served at /api/debug/vars when debug metrics are on.
var metrics = expvar.NewMap("graphql")

const multipartMemory = 32 << 20

type GraphQLHandler struct {
	Schema         graphql.Schema
	Logger         logrus.FieldLogger
	Cookies        *helpers.Manager
	UploadMaxBytes int64
}

func NewGraphQLHandler(schema graphql.Schema, logger logrus.FieldLogger, cookieDomain string, cookieSecure bool, uploadMaxBytes int64) *GraphQLHandler {
	return &GraphQLHandler{
		Schema:         schema,
		Logger:         logger,
		Cookies:        helpers.NewCookie(cookieDomain, cookieSecure),
		UploadMaxBytes: uploadMaxBytes,
	}
}

type graphqlRequest struct {
	Query         string                 `json:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// ginCookies mirrors issued tokens into the access_token cookie.
type ginCookies struct {
	c *gin.Context
	m *helpers.Manager
}

func (g ginCookies) SetToken(token string, exp time.Time) { g.m.SetToken(g.c, token, exp) }
func (g ginCookies) ClearToken()                         { g.m.Clear(g.c) }

// Serve executes one GraphQL operation. Plain JSON and the multipart
// request form (operations, map, files) are both accepted. Execution errors
// are part of a 200 response; only a malformed request gets a 400.
func (h *GraphQLHandler) Serve(c *gin.Context) {
	metrics.Add("requests", 1)
	var (
		req graphqlRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.readMultipart(c)
		if err != nil {
			metrics.Add("bad_requests", 1)
			response.Abort(c, http.StatusBadRequest, "invalid multipart request", err.Error())
			return
		}
	} else if err = c.ShouldBindJSON(&req); err != nil {
		metrics.Add("bad_requests", 1)
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ctx := gql.WithTokenCookie(c.Request.Context(), ginCookies{c: c, m: h.Cookies})
	start := time.Now()
	res := graphql.Do(graphql.Params{
		Schema:         h.Schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if res.HasErrors() {
		metrics.Add("errors", 1)
	}
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"operation":  req.OperationName,
			"errors":     len(res.Errors),
			"duration":   time.Since(start).String(),
		}).Debug("graphql executed")
	}
	c.JSON(http.StatusOK, res)
}

// readMultipart decodes the operations and map fields, then places every
// uploaded file at the variable paths the map names for it.
func (h *GraphQLHandler) readMultipart(c *gin.Context) (graphqlRequest, error) {
	var req graphqlRequest
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return req, err
	}
	form := c.Request.MultipartForm
	ops := form.Value["operations"]
	if len(ops) == 0 {
		return req, errors.New("missing operations field")
	}
	if err := json.Unmarshal([]byte(ops[0]), &req); err != nil {
		return req, fmt.Errorf("operations: %w", err)
	}
	if req.Query == "" {
		return req, errors.New("operations: query is required")
	}
	if req.Variables == nil {
		req.Variables = map[string]interface{}{}
	}

	var fileMap map[string][]string
	if raw := form.Value["map"]; len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw[0]), &fileMap); err != nil {
			return req, fmt.Errorf("map: %w", err)
		}
	}
	for key, paths := range fileMap {
		headers := form.File[key]
		if len(headers) == 0 {
			return req, fmt.Errorf("map: no file for %q", key)
		}
		upload, err := h.readFile(headers[0])
		if err != nil {
			return req, fmt.Errorf("file %q: %w", key, err)
		}
		for _, p := range paths {
			parts := strings.Split(p, ".")
			if len(parts) < 2 || parts[0] != "variables" {
				return req, fmt.Errorf("map: bad path %q", p)
			}
			if err := setPath(req.Variables, parts[1:], upload); err != nil {
				return req, fmt.Errorf("map: %q: %w", p, err)
			}
		}
	}
	return req, nil
}

func (h *GraphQLHandler) readFile(fh *multipart.FileHeader) (*application.FileUpload, error) {
	if h.UploadMaxBytes > 0 && fh.Size > h.UploadMaxBytes {
		return nil, fmt.Errorf("larger than %d bytes", h.UploadMaxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &application.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// setPath writes v at a dotted path inside decoded JSON, through objects and
// list indexes. The slot must already exist, usually holding null.
func setPath(root interface{}, path []string, v interface{}) error {
	cur := root
	for i, key := range path {
		last := i == len(path)-1
		switch node := cur.(type) {
		case map[string]interface{}:
			if _, ok := node[key]; !ok && !last {
				return fmt.Errorf("no field %q", key)
			}
			if last {
				node[key] = v
				return nil
			}
			cur = node[key]
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("bad index %q", key)
			}
			if last {
				node[idx] = v
				return nil
			}
			cur = node[idx]
		default:
			return fmt.Errorf("cannot descend into %q", key)
		}
	}
	return errors.New("empty path")
}

// Healthz answers liveness checks.
func (h *GraphQLHandler) Healthz(c *gin.Context) {
	response.Write(c, response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil))
}

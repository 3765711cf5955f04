package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-blog-graph/internal/interface/http"
)

// GraphQLModule serves the single GraphQL endpoint.
// POST /api accepts JSON and multipart requests; GET /api/healthz reports liveness.
// No GET handler for /api, so the interactive explorer stays off.
type GraphQLModule struct {
	Handler *handlers.GraphQLHandler
}

func NewGraphQLModule(h *handlers.GraphQLHandler) *GraphQLModule {
	return &GraphQLModule{Handler: h}
}

func (m *GraphQLModule) Register(rg *gin.RouterGroup) {
	rg.POST("", m.Handler.Serve)
	rg.GET("/healthz", m.Handler.Healthz)
}

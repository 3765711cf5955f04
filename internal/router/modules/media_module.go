package modules

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// MediaModule serves locally stored uploads read-only, without listings.
type MediaModule struct {
	Prefix string
	Root   string
}

func NewMediaModule(prefix, root string) *MediaModule {
	return &MediaModule{Prefix: prefix, Root: root}
}

func (m *MediaModule) Register(rg *gin.RouterGroup) {
	prefix := "/" + strings.Trim(m.Prefix, "/")
	if prefix == "/" {
		return
	}
	rg.StaticFS(prefix, gin.Dir(m.Root, false))
}

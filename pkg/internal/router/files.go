package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件清单路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	g.GET("/files", handle.ListFiles)
}

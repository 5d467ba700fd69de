// Package router 管理路由配置，将 HTTP 路径绑定到处理器.
package router

import "github.com/gin-gonic/gin"

// RegisterAll 在传入的路由组上注册全部 API 路由.
func RegisterAll(g *gin.RouterGroup) {
	RegisterFilesRoutes(g)
	RegisterHealthCheckRoute(g)
}

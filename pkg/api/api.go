// Package api 定义 HTTP 服务的对外接口，将路由组挂载到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/internal/router"
)

// RegisterGroup 注册 /api 路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterAll(e.Group("/api"))

	return e
}

// Package handle 提供 HTTP 请求处理器的实现.
package handle

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filerelay/pkg/cache"
	ctxPkg "github.com/yeisme/filerelay/pkg/context"
	"github.com/yeisme/filerelay/pkg/internal/repo"
	"github.com/yeisme/filerelay/pkg/internal/types"
	"github.com/yeisme/filerelay/pkg/log"
)

// 常量：文件清单缓存 TTL.
const listCacheTTL = 30 * time.Second

const listCacheKey = "api:files:all"

// ListFiles 返回全部已归档文件，按入库顺序排列. 结果经 KV 做短 TTL 缓存，
// 无 KV 客户端时直接落库查询.
func ListFiles(c *gin.Context) {
	l := log.Logger()

	kv := ctxPkg.GetKVClient(c.Request.Context())
	if kv != nil {
		cc := cache.NewCache(kv)
		if cached, err := cache.Get[types.ListFilesResponse](c.Request.Context(), cc, listCacheKey); err == nil {
			c.JSON(http.StatusOK, cached)

			return
		}
	}

	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "db client not initialized"})

		return
	}

	files, err := repo.NewUsers(dbc).ListAllFiles(c.Request.Context())
	if err != nil {
		l.Error().Err(err).Msg("list files failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})

		return
	}

	res := types.ListFilesResponse{Files: files, Total: len(files)}

	if kv != nil {
		cc := cache.NewCache(kv)
		if err := cache.Set(c.Request.Context(), cc, listCacheKey, res, listCacheTTL); err != nil {
			l.Warn().Err(err).Msg("cache files listing failed")
		}
	}

	c.JSON(http.StatusOK, res)
}

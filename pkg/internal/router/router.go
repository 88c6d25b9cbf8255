// Package router 管理路由配置，只负责将路径和处理器绑定到 gin 引擎，
// 处理器的实现由 pkg/internal/handle 提供.
package router

import (
	"github.com/gin-gonic/gin"
)

// Options 路由注册选项.
type Options struct {
	// ResponseCache 挂在读多写少的列表/详情路由上的响应缓存中间件，nil 表示关闭.
	ResponseCache gin.HandlerFunc
	// SchedulerEnabled 控制是否暴露调度器管理路由.
	SchedulerEnabled bool
}

// RegisterAll 把所有业务路由绑定到传入的分组（通常是 /api/v1）.
func RegisterAll(g *gin.RouterGroup, opts Options) {
	RegisterDatasetRoutes(g, opts.ResponseCache)
	RegisterAuditRoutes(g, opts.ResponseCache)
	RegisterMLRoutes(g)
	RegisterProxyRoutes(g)
	RegisterHealthCheckRoute(g)

	if opts.SchedulerEnabled {
		RegisterSchedulerRoutes(g)
	}
}

// passthrough 空中间件，占位用.
func passthrough(c *gin.Context) {
	c.Next()
}

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/handle"
)

// RegisterProxyRoutes 注册计算后端透明代理路由.
// /ds 下的任意方法任意路径原样转发，404 时触发数据集自愈后重放.
func RegisterProxyRoutes(g *gin.RouterGroup) {
	g.Any("/ds/*path", handle.ProxyCompute)
}

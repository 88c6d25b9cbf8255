package router

import (
	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/handle"
)

// RegisterAuditRoutes 注册审计相关路由.
func RegisterAuditRoutes(g *gin.RouterGroup, cache gin.HandlerFunc) {
	if cache == nil {
		cache = passthrough
	}

	auditsRoutes := g.Group("/audits")
	{
		auditsRoutes.POST("", handle.CreateAudit)
		auditsRoutes.GET("", cache, handle.ListAudits)
		// 总体统计
		auditsRoutes.GET("/stats", cache, handle.AuditStats)

		// 单个审计操作
		singleGroup := auditsRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetAudit)
			singleGroup.PUT("", handle.UpdateAudit)
			singleGroup.DELETE("", handle.DeleteAudit)
		}
	}

	// 公平性计算挂在审计之外的独立路径，与计算后端的路径保持一致
	g.POST("/fairness/calculate", handle.CalculateFairness)
}

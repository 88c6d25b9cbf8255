package router

import (
	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/handle"
)

// RegisterMLRoutes 注册模型训练相关路由.
func RegisterMLRoutes(g *gin.RouterGroup) {
	mlRoutes := g.Group("/ml")
	{
		// 转发训练请求到计算后端（带自愈）
		mlRoutes.POST("/train", handle.TrainModel)
		// 查询数据集上模型的训练状态（?dataset_id=...）
		mlRoutes.GET("/status", handle.TrainingStatus)
	}
}

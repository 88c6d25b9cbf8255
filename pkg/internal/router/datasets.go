package router

import (
	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/handle"
)

// RegisterDatasetRoutes 注册数据集相关路由.
func RegisterDatasetRoutes(g *gin.RouterGroup, cache gin.HandlerFunc) {
	if cache == nil {
		cache = passthrough
	}

	datasetsRoutes := g.Group("/datasets")
	{
		// 上传并入库数据集（multipart: file, 可选 dataset_name）
		datasetsRoutes.POST("/upload", handle.UploadDataset)
		// 当前用户的数据集列表
		datasetsRoutes.GET("", cache, handle.ListDatasets)

		// 单个数据集操作
		singleGroup := datasetsRoutes.Group("/:id")
		{
			singleGroup.GET("", cache, handle.GetDataset)
			singleGroup.DELETE("", handle.DeleteDataset)
		}
	}
}

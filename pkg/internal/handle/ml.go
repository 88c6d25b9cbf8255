package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/middleware"
	"github.com/auditiq/auditiq-gateway/pkg/rule"
)

// TrainModel 转发模型训练到计算后端，成功后把模型信息回写数据集元数据.
func TrainModel(c *gin.Context) {
	if user := currentUser(c); user == nil {
		return
	}

	var req types.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Logger().Warn().Err(err).Msg("invalid train request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": rule.Errors(err)})
		return
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.Train(c.Request.Context(), &req, middleware.GetAuthToken(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TrainingStatus 返回数据集上已训练模型的信息.
func TrainingStatus(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	datasetID := c.Query("dataset_id")
	if datasetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dataset_id is required"})
		return
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.TrainingStatus(c.Request.Context(), user.ID, datasetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

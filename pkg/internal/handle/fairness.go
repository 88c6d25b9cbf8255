package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/rule"
)

// CalculateFairness 对审计执行公平性计算并落库结果.
// 计算后端不可用时返回模拟结果，应答带 simulated 标记.
func CalculateFairness(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	var req types.FairnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Logger().Warn().Err(err).Msg("invalid fairness request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": rule.Errors(err)})
		return
	}

	svc := service.NewFairnessService(c.Request.Context())

	resp, err := svc.Calculate(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

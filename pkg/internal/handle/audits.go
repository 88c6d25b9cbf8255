package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/rule"
)

// CreateAudit 创建审计，缺省字段按业务默认值补齐.
func CreateAudit(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	var req types.CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Logger().Warn().Err(err).Msg("invalid audit request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": rule.Errors(err)})
		return
	}

	svc := service.NewAuditService(c.Request.Context())

	resp, err := svc.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListAudits 返回当前用户的审计列表.
func ListAudits(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewAuditService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAudit 返回单个审计.
func GetAudit(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewAuditService(c.Request.Context())

	resp, err := svc.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateAudit 按白名单字段更新审计.
func UpdateAudit(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	var req types.UpdateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewAuditService(c.Request.Context())

	resp, err := svc.Update(c.Request.Context(), user.ID, c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteAudit 删除审计.
func DeleteAudit(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewAuditService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuditStats 返回当前用户审计的整体统计.
func AuditStats(c *gin.Context) {
	user := resolveUser(c)
	if user == nil {
		return
	}

	svc := service.NewAuditService(c.Request.Context())

	resp, err := svc.Stats(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

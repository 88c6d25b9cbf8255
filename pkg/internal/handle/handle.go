// Package handle 提供请求处理器的实现，用于处理HTTP请求.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/authn"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/middleware"
)

func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Not Implemented"})
}

// currentUser 取认证中间件注入的用户；缺失时写 401 并返回 nil.
func currentUser(c *gin.Context) *authn.AuthUser {
	user := middleware.GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}

	return user
}

// resolveUser 把认证身份换成内部用户记录（不存在则建影子用户）；
// 失败时已写应答，返回 nil.
func resolveUser(c *gin.Context) *model.User {
	authUser := currentUser(c)
	if authUser == nil {
		return nil
	}

	svc := service.NewDatasetService(c.Request.Context())

	user, err := svc.ResolveUser(c.Request.Context(), authUser)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}

	return user
}

// respondServiceError 把 service 层错误翻译成 HTTP 应答.
func respondServiceError(c *gin.Context, err error) {
	var malformed *service.MalformedInputError
	if errors.As(err, &malformed) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Malformed CSV",
			"details": malformed.Cells,
		})

		return
	}

	var backend *service.BackendError
	if errors.As(err, &backend) {
		c.JSON(backend.StatusCode, gin.H{"error": backend.Detail})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, authn.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrBackendUnreachable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "compute backend unreachable"})
	default:
		log.Logger().Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Package api 定义对外 HTTP 接口的注册入口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/router"
)

// APIPrefix 所有业务路由的统一前缀.
const APIPrefix = "/api/v1"

// RegisterGroup 把全部业务路由注册到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, opts router.Options) *gin.Engine {
	router.RegisterAll(e.Group(APIPrefix), opts)

	return e
}

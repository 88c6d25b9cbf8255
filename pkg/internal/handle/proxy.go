package handle

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
	"github.com/auditiq/auditiq-gateway/pkg/middleware"
)

// computePathPrefix 计算后端的数据科学路由前缀，转发时要拼回去.
const computePathPrefix = "/api/ds"

// ProxyCompute 把 /ds/* 下的请求转发给计算后端.
//
// 后端 404 且请求能定位到数据集时，网关先从对象存储重新镜像数据集
// 再重放一次原始请求，对调用方完全透明.
func ProxyCompute(c *gin.Context) {
	if user := currentUser(c); user == nil {
		return
	}

	var body []byte
	if c.Request.Body != nil {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		body = b
	}

	svc := service.NewDatasetService(c.Request.Context())

	resp, err := svc.ProxyWithHeal(c.Request.Context(),
		c.Request.Method, computePathPrefix+c.Param("path"), c.Request.URL.Query(), body,
		middleware.GetAuthToken(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	c.Data(resp.StatusCode, contentType, resp.Body)
}

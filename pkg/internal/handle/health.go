// Package handle 新增健康检查处理器实现.
package handle

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	ctxPkg "github.com/auditiq/auditiq-gateway/pkg/context"
	"github.com/auditiq/auditiq-gateway/pkg/internal/service"
)

const timeout = 2 * time.Second

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil { // dbc.DB 来自于嵌入的 *gorm.DB
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": "db client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok"})
}

// HealthS3 S3/对象存储健康检查.
func HealthS3(c *gin.Context) {
	s3c := ctxPkg.GetS3Client(c.Request.Context())
	if s3c == nil || s3c.Client == nil { // s3c.Client 为底层 *minio.Client
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "s3", "status": "unhealthy", "error": "s3 client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := s3c.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "s3", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "s3", "status": "ok"})
}

// HealthMQ 消息队列健康检查.
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	if mqc == nil { // publisher 与 subscriber 初始化在 New 中, 判空即可
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "mq", "status": "unhealthy", "error": "mq client not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok"})
}

// HealthCompute 计算后端健康检查.
func HealthCompute(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := service.ComputeClient().Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "compute", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "compute", "status": "ok"})
}

// Health 聚合健康检查：并发探测各组件，任何一个失败整体就是 503.
// 计算后端是旁路依赖，结果单独体现，不拉低整体状态.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	var (
		mu         sync.Mutex
		components = map[string]string{}
	)

	set := func(name, status string) {
		mu.Lock()
		components[name] = status
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dbc := ctxPkg.GetDBClient(gctx)
		if dbc == nil || dbc.DB == nil {
			set("db", "unhealthy")
			return context.Canceled
		}

		sqlDB, err := dbc.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(gctx)
		}

		if err != nil {
			set("db", "unhealthy")
			return err
		}

		set("db", "ok")

		return nil
	})

	g.Go(func() error {
		s3c := ctxPkg.GetS3Client(gctx)
		if s3c == nil || s3c.Client == nil {
			set("s3", "unhealthy")
			return context.Canceled
		}

		if err := s3c.HealthCheck(gctx); err != nil {
			set("s3", "unhealthy")
			return err
		}

		set("s3", "ok")

		return nil
	})

	g.Go(func() error {
		if ctxPkg.GetMQClient(gctx) == nil {
			set("mq", "unhealthy")
		} else {
			set("mq", "ok")
		}

		return nil
	})

	// 计算后端状态只做展示
	g.Go(func() error {
		if err := service.ComputeClient().Health(gctx); err != nil {
			set("compute", "unhealthy")
		} else {
			set("compute", "ok")
		}

		return nil
	})

	err := g.Wait()

	status := http.StatusOK
	overall := "ok"

	if err != nil {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{"status": overall, "components": components})
}

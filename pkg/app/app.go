// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/auditiq/auditiq-gateway/pkg/api"
	appcache "github.com/auditiq/auditiq-gateway/pkg/cache"
	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/authn"
	"github.com/auditiq/auditiq-gateway/pkg/internal/jobs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/router"
	"github.com/auditiq/auditiq-gateway/pkg/internal/storage"
	"github.com/auditiq/auditiq-gateway/pkg/log"
	"github.com/auditiq/auditiq-gateway/pkg/metrics"
	"github.com/auditiq/auditiq-gateway/pkg/middleware"
	"github.com/auditiq/auditiq-gateway/pkg/scheduler"
	"github.com/auditiq/auditiq-gateway/pkg/tracing"
)

type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()
	gin.SetMode(config.Server.Mode)
	engine := gin.New()

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	// 元数据表结构迁移
	if dbc := manager.GetDBClient(); dbc != nil {
		if err := model.AutoMigrate(dbc.GetDB()); err != nil {
			fmt.Printf("Error migrating database: %v\n", err)
			os.Exit(1)
		}
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
	)

	if config.Server.CORS {
		engine.Use(middleware.CORSMiddleware())
	}

	if config.Server.Gzip {
		engine.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	engine.Use(
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(manager),
	)

	// 认证：外部身份服务校验 Bearer 令牌，结果进 KV 缓存
	verifier := authn.New(&config.Auth, nil)
	if kvc := manager.GetKVClient(); kvc != nil {
		verifier = authn.New(&config.Auth, kvc.KVStore)
	}

	engine.Use(middleware.AuthMiddleware(config.Auth, verifier))

	app := &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}

	// 定时任务：孤儿对象清理
	if config.Scheduler.Enabled {
		sched, err := scheduler.NewScheduler()
		if err != nil {
			fmt.Printf("Error initializing scheduler: %v\n", err)
			os.Exit(1)
		}

		if err := jobs.RegisterCronJobs(sched, manager, config.Scheduler); err != nil {
			fmt.Printf("Error registering cron jobs: %v\n", err)
			os.Exit(1)
		}

		sched.Start()
		engine.Use(middleware.SchedulerMiddleware(sched))

		app.scheduler = sched
	}

	// 列表/详情路由的响应缓存
	var responseCache gin.HandlerFunc
	if kvc := manager.GetKVClient(); kvc != nil {
		responseCache = middleware.CacheMiddleware(
			middleware.DefaultCacheConfig(appcache.NewCache(kvc.KVStore)))
	}

	api.RegisterGroup(engine, router.Options{
		ResponseCache:    responseCache,
		SchedulerEnabled: config.Scheduler.Enabled,
	})

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return app
}

func (a *App) Run() error {
	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}

// Close 停止调度器并释放存储连接.
func (a *App) Close() error {
	if a.scheduler != nil {
		_ = a.scheduler.Stop()
	}

	if a.manager != nil {
		return a.manager.Close()
	}

	return nil
}

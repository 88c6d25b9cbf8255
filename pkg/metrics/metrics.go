// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/auditiq/auditiq-gateway/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.RequestCounter.WithLabelValues("POST", "/api/v1/datasets/upload").Inc()
//	metrics.DatasetIngestTotal.WithLabelValues("ok").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// DatasetIngestTotal 数据集入库计数，按结果（ok/failed）统计.
	DatasetIngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_ingest_total",
			Help: "Total number of dataset ingestion attempts",
		},
		[]string{"result"},
	)

	// MirrorAttempts 计算后端镜像尝试计数，按结果（ok/failed/skipped）统计.
	MirrorAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compute_mirror_attempts_total",
			Help: "Total number of dataset mirror attempts against the compute backend",
		},
		[]string{"result"},
	)

	// HealAttempts 数据集自动修复尝试计数，按结果（healed/not_found/failed）统计.
	HealAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_heal_attempts_total",
			Help: "Total number of dataset auto-heal attempts",
		},
		[]string{"result"},
	)

	// ProxyRequests 计算后端转发请求计数，按上游状态码分类统计.
	ProxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compute_proxy_requests_total",
			Help: "Total number of requests proxied to the compute backend",
		},
		[]string{"method", "status"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter,
		RequestDuration,
		ActiveConnections,
		DatasetIngestTotal,
		MirrorAttempts,
		HealAttempts,
		ProxyRequests,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// NewCounter 创建新的计数器指标.
func NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(counter)

	return counter
}

// NewGauge 创建新的仪表盘指标.
func NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(gauge)

	return gauge
}

// NewHistogram 创建新的直方图指标.
func NewHistogram(name, help string, labels []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: prometheus.DefBuckets,
		},
		labels,
	)
	registry.MustRegister(histogram)

	return histogram
}

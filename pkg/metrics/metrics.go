// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集HTTP与机器人工作流指标.
//
// Example:
//
//	import "github.com/yeisme/filerelay/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.FilesRegistered.WithLabelValues("document").Inc()
//	metrics.LinksResolved.WithLabelValues("batch").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/filerelay/pkg/configs"
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

	// FilesRegistered 按类型统计的注册文件计数.
	FilesRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_files_registered_total",
			Help: "Total number of files archived and recorded, by file type",
		},
		[]string{"type"},
	)

	// LinksResolved 链接解析计数，kind 为 batch、single 或 miss.
	LinksResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_links_resolved_total",
			Help: "Total number of start tokens resolved, by outcome kind",
		},
		[]string{"kind"},
	)

	// GateDenied 订阅门禁拒绝计数.
	GateDenied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_gate_denied_total",
			Help: "Total number of operations denied by the subscription gate",
		},
	)

	// BatchesFinalized 批次落库计数.
	BatchesFinalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_batches_finalized_total",
			Help: "Total number of batch sessions finalized",
		},
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
		RequestCounter, RequestDuration,
		FilesRegistered, LinksResolved, GateDenied, BatchesFinalized,
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

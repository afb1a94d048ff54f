package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 帖子创建结果标签
const (
	ResultSuccess    = "success"
	ResultValidation = "validation"
	ResultNotFound   = "not_found"
	ResultError      = "error"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库连接池
	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge

	// 缓存指标
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	// 发帖流程指标
	postCreateTotal   *prometheus.CounterVec
	postStageDuration *prometheus.HistogramVec
	postFollowupJobs  *prometheus.CounterVec
	workerQueueDepth  prometheus.Gauge
}

func newMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		dbConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),

		dbConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		cacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_prefix"},
		),

		cacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_prefix"},
		),

		postCreateTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_create_total",
				Help: "Post creation requests by outcome",
			},
			[]string{"result"},
		),

		postStageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "post_pipeline_stage_duration_seconds",
				Help:    "Duration of each post creation stage",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"stage"},
		),

		postFollowupJobs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_followup_jobs_total",
				Help: "Follow-up jobs executed after post creation",
			},
			[]string{"job", "result"},
		),

		workerQueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "worker_queue_depth",
				Help: "Number of jobs waiting in the worker pool queue",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateDBConnections 更新数据库连接数
func (m *MetricsCollector) UpdateDBConnections(active, idle int) {
	m.dbConnectionsActive.Set(float64(active))
	m.dbConnectionsIdle.Set(float64(idle))
}

// RecordCacheOperation 记录缓存命中
func (m *MetricsCollector) RecordCacheOperation(keyPrefix string, hit bool) {
	if hit {
		m.cacheHitsTotal.WithLabelValues(keyPrefix).Inc()
	} else {
		m.cacheMissesTotal.WithLabelValues(keyPrefix).Inc()
	}
}

// RecordPostCreate 记录一次发帖结果
func (m *MetricsCollector) RecordPostCreate(result string) {
	m.postCreateTotal.WithLabelValues(result).Inc()
}

// ObserveStage 记录流程阶段耗时
func (m *MetricsCollector) ObserveStage(stage string, start time.Time) {
	m.postStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordFollowupJob 记录异步任务执行结果
func (m *MetricsCollector) RecordFollowupJob(job string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.postFollowupJobs.WithLabelValues(job, result).Inc()
}

// UpdateQueueDepth 更新任务队列长度
func (m *MetricsCollector) UpdateQueueDepth(depth int) {
	m.workerQueueDepth.Set(float64(depth))
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器，promauto 注册只执行一次
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = newMetricsCollector()
	})
	return globalCollector
}

// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paiban/oncall/pkg/model"
)

const namespace = "oncall"

// Registry 指标注册表
type Registry struct {
	reg *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	unfilledSlots      *prometheus.GaugeVec
	fillRate           prometheus.Gauge
	fairnessGini       *prometheus.GaugeVec
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = NewRegistry()
	})
	return registry
}

// NewRegistry 创建独立的注册表并注册默认指标
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	// 请求计数器
	r.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP请求总数",
	}, []string{"method", "path", "status"})

	// 请求延迟直方图
	r.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP请求延迟",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"method", "path"})

	// 值班表生成计数器
	r.generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_generations_total",
		Help:      "值班表生成次数",
	}, []string{"status"})

	r.generationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "roster_generation_duration_seconds",
		Help:      "值班表生成耗时",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})

	// 最近一次生成的空缺数
	r.unfilledSlots = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_unfilled_slots",
		Help:      "最近一次生成的未分配时段数",
	}, []string{"role"})

	r.fillRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_fill_rate",
		Help:      "最近一次生成的填充率",
	})

	r.fairnessGini = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_fairness_gini",
		Help:      "最近一次生成的公平性基尼系数",
	}, []string{"metric_type"})

	r.reg.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.generations,
		r.generationDuration,
		r.unfilledSlots,
		r.fillRate,
		r.fairnessGini,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler 返回Prometheus格式的指标HTTP处理器
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// RecordRequest 记录请求指标
func (r *Registry) RecordRequest(method, path string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration 记录值班表生成指标
func (r *Registry) RecordGeneration(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	r.generations.WithLabelValues(status).Inc()
	r.generationDuration.Observe(duration.Seconds())
}

// SetUnfilledSlots 设置未分配时段数
func (r *Registry) SetUnfilledSlots(role model.Role, count int) {
	r.unfilledSlots.WithLabelValues(string(role)).Set(float64(count))
}

// SetFillRate 设置填充率
func (r *Registry) SetFillRate(rate float64) {
	r.fillRate.Set(rate)
}

// SetFairnessGini 设置公平性基尼系数
func (r *Registry) SetFairnessGini(metricType string, gini float64) {
	r.fairnessGini.WithLabelValues(metricType).Set(gini)
}

// Handler 返回全局注册表的指标处理器
func Handler() http.Handler {
	return GetRegistry().Handler()
}

// RecordRequestMetrics 记录请求指标
func RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	GetRegistry().RecordRequest(method, path, status, duration)
}

// RecordRosterGeneration 记录值班表生成指标
func RecordRosterGeneration(success bool, duration time.Duration) {
	GetRegistry().RecordGeneration(success, duration)
}

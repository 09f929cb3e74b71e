// Package metrics 提供 Prometheus 指标集合：HTTP/gRPC 请求与策略估值相关的 counter/histogram
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "options"

// Metrics 指标集合，每个实例持有独立的 registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数 (method, path, status)
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// gRPC 请求计数 (method, code)
	GRPCRequestsTotal *prometheus.CounterVec
	// gRPC 请求耗时
	GRPCRequestDuration *prometheus.HistogramVec

	// 策略估值次数 (result: ok / error kind)
	EvaluationsTotal *prometheus.CounterVec
	// 策略估值耗时
	EvaluationDuration prometheus.Histogram
	// 定价引擎调用次数
	OracleCallsTotal prometheus.Counter
	// 定价引擎失败次数
	OracleFailuresTotal prometheus.Counter
	// 未匹配任何策略的估值次数
	UnclassifiedTotal prometheus.Counter
	// 行情请求次数 (op, result)
	MarketDataRequestsTotal *prometheus.CounterVec
}

// New 创建指标实例并注册到独立 registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests",
		}, []string{"method", "code"}),
		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "evaluations_total",
			Help:      "Strategy evaluations by result",
		}, []string{"result"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "evaluation_duration_seconds",
			Help:      "Strategy evaluation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		OracleCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "oracle_calls_total",
			Help:      "Pricing oracle calls",
		}),
		OracleFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "oracle_failures_total",
			Help:      "Pricing oracle failures",
		}),
		UnclassifiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "unclassified_total",
			Help:      "Evaluations that matched no strategy",
		}),
		MarketDataRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "market_data_requests_total",
			Help:      "Market data requests by operation and result",
		}, []string{"op", "result"}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.OracleCallsTotal,
		m.OracleFailuresTotal,
		m.UnclassifiedTotal,
		m.MarketDataRequestsTotal,
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, status int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordGRPCRequest 记录 gRPC 请求
func (m *Metrics) RecordGRPCRequest(method, code string, seconds float64) {
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(seconds)
}

// RecordEvaluation 记录一次估值结果，result 为 ok 或错误类别
func (m *Metrics) RecordEvaluation(result string, seconds float64) {
	m.EvaluationsTotal.WithLabelValues(result).Inc()
	m.EvaluationDuration.Observe(seconds)
}

// RecordMarketData 记录一次行情请求
func (m *Metrics) RecordMarketData(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MarketDataRequestsTotal.WithLabelValues(op, result).Inc()
}

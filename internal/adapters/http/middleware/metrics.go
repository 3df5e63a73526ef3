// Package middleware - HTTP метрики Prometheus.
//
// Справочник отвечает 200 и на отказы, поэтому кроме кода ответа
// метрики несут поле Exito конверта (label "exito": true/false/none).
// Метрики процедур и бизнес-операций живут в pkg/metrics.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// Значения label "exito".
const (
	exitoTrue  = "true"
	exitoFalse = "false"
	exitoNone  = "none"
)

// unmatchedRoute - label для запросов вне таблицы маршрутов.
const unmatchedRoute = "unmatched"

var (
	httpResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "http",
			Name:      "responses_total",
			Help:      "HTTP responses by route, status code and envelope outcome",
		},
		[]string{"method", "route", "status", "exito"},
	)

	httpLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			// процедуры на удалённом SQL Server: хвост до нескольких секунд
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// MetricsConfig - настройки сбора HTTP метрик.
type MetricsConfig struct {
	// SkipPaths - пути без метрик (сам /metrics, probes)
	SkipPaths []string
}

// DefaultMetricsConfig пропускает только /metrics.
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{SkipPaths: []string{"/metrics"}}
}

// Metrics возвращает middleware сбора HTTP метрик.
func Metrics() gin.HandlerFunc {
	return MetricsWithConfig(DefaultMetricsConfig())
}

// MetricsWithConfig возвращает middleware с явной конфигурацией.
func MetricsWithConfig(config *MetricsConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultMetricsConfig()
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		httpInFlight.Dec()

		// шаблон маршрута, не сырой путь: idUsuario в query не влияет
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		httpResponses.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()), envelopeOutcome(c),
		).Inc()
		httpLatency.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
	}
}

func envelopeOutcome(c *gin.Context) string {
	exito, ok := common.GetOutcome(c)
	switch {
	case !ok:
		return exitoNone
	case exito:
		return exitoTrue
	default:
		return exitoFalse
	}
}

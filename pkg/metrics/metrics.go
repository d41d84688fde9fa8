package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the API
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	stageTransitions *prometheus.CounterVec
	nudgesGenerated  prometheus.Counter
}

// New registers and returns the API metrics
func New() *Metrics {
	return &Metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerhub_http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "partnerhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		stageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerhub_stage_transitions_total",
			Help: "Deal stage transitions by target stage.",
		}, []string{"stage"}),
		nudgesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partnerhub_nudges_generated_total",
			Help: "Nudges generated by the rules engine and sweeps.",
		}),
	}
}

// Middleware records request counts and latency per route
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			m.requestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordStageTransition counts a deal moving into a stage
func (m *Metrics) RecordStageTransition(stage string) {
	m.stageTransitions.WithLabelValues(stage).Inc()
}

// RecordNudgeGenerated counts a generated nudge
func (m *Metrics) RecordNudgeGenerated() {
	m.nudgesGenerated.Inc()
}

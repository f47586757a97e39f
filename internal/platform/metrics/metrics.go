// Package metrics exposes Prometheus instrumentation for the screening
// service: HTTP traffic, AI analysis outcomes, and clinical record counters.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	PatientsRegistered  prometheus.Counter
	ScreeningsTotal     *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	PrescriptionsIssued prometheus.Counter

	AnalysisDuration prometheus.Histogram
	AnalysisFailures *prometheus.CounterVec
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		PatientsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "patients_registered_total",
			Help:      "Total patient records registered.",
		}),

		ScreeningsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "screenings_total",
			Help:      "Total screening results created, by worst detected disease.",
		}, []string{"disease"}),

		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "status_transitions_total",
			Help:      "Screening result status transitions by target status.",
		}, []string{"to"}),

		PrescriptionsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "prescriptions_issued_total",
			Help:      "Total prescriptions issued during doctor review.",
		}),

		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "ai",
			Name:      "analysis_duration_seconds",
			Help:      "Latency of retinal analysis calls to the model API.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),

		AnalysisFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ai",
			Name:      "analysis_failures_total",
			Help:      "Failed analysis calls by failure reason.",
		}, []string{"reason"}),
	}
}

// Handler serves the Prometheus exposition endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// InstrumentHTTP records per-request counters and latency.
func InstrumentHTTP(c *Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := strconv.Itoa(ctx.Response().Status)
			path := ctx.Path()
			if path == "" {
				path = ctx.Request().URL.Path
			}
			method := ctx.Request().Method

			c.RequestsTotal.WithLabelValues(method, path, status).Inc()
			c.RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

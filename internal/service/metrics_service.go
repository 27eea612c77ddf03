package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campus-ops/shift-attendance-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the attendance engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	scanOutcomes       *prometheus.CounterVec
	debounceRejections *prometheus.CounterVec
	reconcileRuns      *prometheus.CounterVec
	markedAbsent       *prometheus.CounterVec
	alreadyPresent     *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scanOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_outcomes_total",
		Help: "Scan classification outcomes by source",
	}, []string{"source", "outcome"})

	debounceRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_debounce_rejections_total",
		Help: "Scan attempts rejected before classification",
	}, []string{"reason"})

	reconcileRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_runs_total",
		Help: "Absence reconciliation runs by terminal state",
	}, []string{"shift", "state"})

	markedAbsent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_marked_absent_total",
		Help: "Students auto-marked absent",
	}, []string{"shift"})

	alreadyPresent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_already_present_total",
		Help: "Reconciler inserts that lost the race to a live scan",
	}, []string{"shift"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scanOutcomes,
		debounceRejections, reconcileRuns, markedAbsent, alreadyPresent, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		scanOutcomes:       scanOutcomes,
		debounceRejections: debounceRejections,
		reconcileRuns:      reconcileRuns,
		markedAbsent:       markedAbsent,
		alreadyPresent:     alreadyPresent,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a request's duration and count.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveScanOutcome counts one classified scan.
func (s *MetricsService) ObserveScanOutcome(source models.ScanSource, outcome models.ScanOutcome) {
	s.scanOutcomes.WithLabelValues(string(source), string(outcome)).Inc()
}

// ObserveDebounceRejection counts a scan stopped at the gate.
func (s *MetricsService) ObserveDebounceRejection(reason string) {
	s.debounceRejections.WithLabelValues(reason).Inc()
}

// ObserveReconcileRun records a completed (or not-due) reconciliation run.
func (s *MetricsService) ObserveReconcileRun(report *models.ReconcileReport) {
	shift := string(report.Shift)
	s.reconcileRuns.WithLabelValues(shift, string(report.State)).Inc()
	if report.MarkedAbsent > 0 {
		s.markedAbsent.WithLabelValues(shift).Add(float64(report.MarkedAbsent))
	}
	if report.AlreadyPresent > 0 {
		s.alreadyPresent.WithLabelValues(shift).Add(float64(report.AlreadyPresent))
	}
}

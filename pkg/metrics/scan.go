package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics records ingestion pipeline telemetry.
type ScanMetrics struct {
	duration       *prometheus.HistogramVec
	scans          *prometheus.CounterVec
	catalogLookups *prometheus.CounterVec
	fanoutFailures *prometheus.CounterVec
}

// NewScanMetrics registers the scan pipeline metrics on the provided registerer.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	if reg == nil {
		return &ScanMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scan_duration_seconds",
		Help:    "Duration of scan ingestion requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scans_total",
		Help: "Processed scan events by action and outcome.",
	}, []string{"action", "outcome"})
	catalogLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_lookups_total",
		Help: "External catalog lookups by result.",
	}, []string{"result"})
	fanoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fanout_failures_total",
		Help: "Best-effort fan-out writes that failed after the stock update.",
	}, []string{"target"})
	reg.MustRegister(duration, scans, catalogLookups, fanoutFailures)
	return &ScanMetrics{
		duration:       duration,
		scans:          scans,
		catalogLookups: catalogLookups,
		fanoutFailures: fanoutFailures,
	}
}

// ObserveDuration records the wall time of one ingestion request.
func (m *ScanMetrics) ObserveDuration(action string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(action)).Observe(duration.Seconds())
}

// IncScan counts one completed scan with its outcome (accepted/rejected/failed).
func (m *ScanMetrics) IncScan(action, outcome string) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// IncCatalogLookup counts one catalog lookup by result (hit/miss/error).
func (m *ScanMetrics) IncCatalogLookup(result string) {
	if m == nil || m.catalogLookups == nil {
		return
	}
	m.catalogLookups.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncFanoutFailure counts one failed best-effort write by target (log/notification).
func (m *ScanMetrics) IncFanoutFailure(target string) {
	if m == nil || m.fanoutFailures == nil {
		return
	}
	m.fanoutFailures.WithLabelValues(normalizeLabel(target)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestScanMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewScanMetrics(reg)
	metrics.ObserveDuration("add", 250*time.Millisecond)
	metrics.IncScan("add", "accepted")
	metrics.IncCatalogLookup("miss")
	metrics.IncFanoutFailure("notification")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "scans_total", "action", "add"); err != nil {
		t.Fatalf("fetch scans: %v", err)
	} else if got != 1 {
		t.Fatalf("expected scans=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "catalog_lookups_total", "result", "miss"); err != nil {
		t.Fatalf("fetch catalog lookups: %v", err)
	} else if got != 1 {
		t.Fatalf("expected lookups=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "fanout_failures_total", "target", "notification"); err != nil {
		t.Fatalf("fetch fanout failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "scan_duration_seconds", "action", "add"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestScanMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewScanMetrics(nil)
	metrics.IncScan("add", "accepted")
	metrics.IncCatalogLookup("hit")
	metrics.IncFanoutFailure("log")
	metrics.ObserveDuration("remove", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				if m.Counter != nil {
					return m.Counter.GetValue()
				}
				if m.Gauge != nil {
					return m.Gauge.GetValue()
				}
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordProjection("simulate")
	r.RecordProjection("simulate")
	r.RecordBatchRows("ok", 3)
	r.RecordBatchRows("failed", 0)
	r.RecordFinalPrice("simulate", 1088.24)
	r.RecordError("batch_projection")
	r.RecordLatency("recompute", 0.01)

	if v := counterValue(t, reg, "pricesim_projections_total", map[string]string{"source": "simulate"}); v != 2 {
		t.Fatalf("expected 2 projections, got %v", v)
	}
	if v := counterValue(t, reg, "pricesim_batch_rows_total", map[string]string{"outcome": "ok"}); v != 3 {
		t.Fatalf("expected 3 ok rows, got %v", v)
	}
	if v := counterValue(t, reg, "pricesim_last_final_price", map[string]string{"source": "simulate"}); v != 1088.24 {
		t.Fatalf("unexpected final price gauge %v", v)
	}
	if v := counterValue(t, reg, "pricesim_errors_total", map[string]string{"type": "batch_projection"}); v != 1 {
		t.Fatalf("expected 1 error, got %v", v)
	}
}

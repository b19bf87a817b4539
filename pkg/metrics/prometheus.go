package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	projections *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	batchRows   *prometheus.CounterVec
	finalPrice  *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered with the default registerer.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		projections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricesim_projections_total",
				Help: "Total number of successful projections",
			},
			[]string{"source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricesim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		batchRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricesim_batch_rows_total",
				Help: "Rows processed by batch recomputation",
			},
			[]string{"outcome"},
		),
		finalPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricesim_last_final_price",
				Help: "Final price of the most recent projection",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricesim_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProjection counts a successful projection.
func (r *Recorder) RecordProjection(source string) {
	r.projections.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBatchRows adds n rows with the given outcome.
func (r *Recorder) RecordBatchRows(outcome string, n int) {
	if n <= 0 {
		return
	}
	r.batchRows.WithLabelValues(outcome).Add(float64(n))
}

// RecordFinalPrice sets the last projected final price.
func (r *Recorder) RecordFinalPrice(source string, price float64) {
	r.finalPrice.WithLabelValues(source).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal  *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	signalStrength *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_analyses_total",
				Help: "Total number of completed analyses",
			},
			[]string{"source", "signal"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		signalStrength: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinsight_signal_strength",
				Help: "Last computed signal strength for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records one finished analysis by source and signal.
func (r *Recorder) RecordAnalysis(source, signal string) {
	r.analysesTotal.WithLabelValues(source, signal).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordSignalStrength records the last signal strength for a symbol.
func (r *Recorder) RecordSignalStrength(symbol string, strength float64) {
	r.signalStrength.WithLabelValues(symbol).Set(strength)
}

// Package metrics exposes the engine's Prometheus instrumentation
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder handles metrics recording and exposure
type Recorder struct {
	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Batch metrics
	batchCounter *prometheus.CounterVec
	batchLatency *prometheus.HistogramVec
	rowCounter   *prometheus.CounterVec

	// Failure metrics
	convergenceFailures *prometheus.CounterVec
	rejectedBatches     *prometheus.CounterVec

	// Kafka metrics
	kafkaLagGauge *prometheus.GaugeVec
}

// NewRecorder creates a new metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{
		apiRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oe_api_requests_total",
				Help: "The total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiLatencyHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oe_api_latency_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // From 1ms to ~16s
			},
			[]string{"method", "path"},
		),

		batchCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oe_batches_total",
				Help: "The total number of priced batches",
			},
			[]string{"model", "mode"},
		),
		batchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oe_batch_latency_seconds",
				Help:    "Batch pricing latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 18), // From 0.1ms to ~26s
			},
			[]string{"model", "mode"},
		),
		rowCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oe_rows_total",
				Help: "The total number of priced rows",
			},
			[]string{"model"},
		),

		convergenceFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oe_convergence_failures_total",
				Help: "Rows whose iterative solve exhausted its budget",
			},
			[]string{"model"},
		),
		rejectedBatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oe_rejected_batches_total",
				Help: "Batches rejected by input validation",
			},
			[]string{"field"},
		),

		kafkaLagGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oe_kafka_consumer_lag",
				Help: "Kafka consumer lag (messages)",
			},
			[]string{"topic", "group_id"},
		),
	}
}

// RecordAPIRequest records metrics for an API request
func (r *Recorder) RecordAPIRequest(method, path string, status int, latency time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordBatch records a completed batch: count, row volume, convergence
// failures and latency, labeled by model and processing mode.
func (r *Recorder) RecordBatch(model, mode string, rows, failures int, latency time.Duration) {
	r.batchCounter.WithLabelValues(model, mode).Inc()
	r.batchLatency.WithLabelValues(model, mode).Observe(latency.Seconds())
	r.rowCounter.WithLabelValues(model).Add(float64(rows))
	if failures > 0 {
		r.convergenceFailures.WithLabelValues(model).Add(float64(failures))
	}
}

// RecordRejection records a batch rejected by validation
func (r *Recorder) RecordRejection(field string) {
	if field == "" {
		field = "batch"
	}
	r.rejectedBatches.WithLabelValues(field).Inc()
}

// RecordKafkaLag records the current consumer lag for a topic
func (r *Recorder) RecordKafkaLag(topic, groupID string, lag int64) {
	r.kafkaLagGauge.WithLabelValues(topic, groupID).Set(float64(lag))
}

// Package metrics provides optional Prometheus instrumentation around the
// iching façade, mirrored from the teacher's server metrics collectors.
// The collectors are package-level promauto values, so they register
// with the default Prometheus registry when this package is imported,
// which the iching package always does. This package exposes no HTTP
// handler of its own.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	codesEncodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iching_codes_encoded_total",
			Help: "Total number of codes encoded",
		},
		[]string{"status"}, // status: ok, error
	)

	codesDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iching_codes_decoded_total",
			Help: "Total number of decode attempts",
		},
		[]string{"status"}, // status: ok, error
	)

	decodeFailuresByKind = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iching_decode_failures_total",
			Help: "Decode failures by error kind",
		},
		[]string{"kind"}, // kind: locate, rectify, extract, correct
	)

	errorsCorrectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iching_rs_errors_corrected_total",
			Help: "Total number of Reed-Solomon symbol errors corrected across all decodes",
		},
	)

	encodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iching_encode_duration_seconds",
			Help:    "Encode call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	decodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iching_decode_duration_seconds",
			Help:    "Decode call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// ObserveEncode records the outcome and duration of one Encode call.
func ObserveEncode(ok bool, seconds float64) {
	encodeDuration.Observe(seconds)
	if ok {
		codesEncodedTotal.WithLabelValues("ok").Inc()
	} else {
		codesEncodedTotal.WithLabelValues("error").Inc()
	}
}

// ObserveDecode records the outcome and duration of one Decode call. kind
// is ignored when ok is true.
func ObserveDecode(ok bool, kind string, seconds float64) {
	decodeDuration.Observe(seconds)
	if ok {
		codesDecodedTotal.WithLabelValues("ok").Inc()
		return
	}
	codesDecodedTotal.WithLabelValues("error").Inc()
	if kind != "" {
		decodeFailuresByKind.WithLabelValues(kind).Inc()
	}
}

// ObserveCorrectedErrors adds n Reed-Solomon symbol corrections to the
// running total.
func ObserveCorrectedErrors(n int) {
	if n > 0 {
		errorsCorrectedTotal.Add(float64(n))
	}
}

// Package metrics exposes prometheus collectors for allocation and
// sample-size activity. A nil *Metrics is a valid no-op recorder.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gotrial"

type Metrics struct {
	SequencesTotal       *prometheus.CounterVec
	FallbacksTotal       *prometheus.CounterVec
	ParticipantsTotal    *prometheus.CounterVec
	SampleSizeTotal      *prometheus.CounterVec
	SampleSizeResult     prometheus.Histogram
	EnrollmentsTotal     *prometheus.CounterVec
	BatchInFlight        prometheus.Gauge
	AllocationErrorTotal *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SequencesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequences_generated_total",
			Help:      "Allocation sequences generated, by requested and applied method",
		}, []string{"requested", "applied"}),
		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "method_fallbacks_total",
			Help:      "Sequences where the applied method differs from the requested one",
		}, []string{"requested", "applied"}),
		ParticipantsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_allocated_total",
			Help:      "Participants assigned across all generated sequences",
		}, []string{"method"}),
		SampleSizeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_size_calculations_total",
			Help:      "Sample size calculations, by design type and outcome",
		}, []string{"design_type", "outcome"}),
		SampleSizeResult: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_size_result",
			Help:      "Distribution of computed sample sizes",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		}),
		EnrollmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_total",
			Help:      "Participants enrolled against stored allocations, by arm",
		}, []string{"arm"}),
		BatchInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_allocations_in_flight",
			Help:      "Batch allocation requests currently running",
		}),
		AllocationErrorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_errors_total",
			Help:      "Failed allocation or calculation requests, by error code",
		}, []string{"code"}),
	}
}

func (m *Metrics) RecordSequence(requested, applied string, participants int) {
	if m == nil {
		return
	}
	m.SequencesTotal.WithLabelValues(requested, applied).Inc()
	if requested != applied {
		m.FallbacksTotal.WithLabelValues(requested, applied).Inc()
	}
	m.ParticipantsTotal.WithLabelValues(applied).Add(float64(participants))
}

func (m *Metrics) RecordSampleSize(designType string, n int, err error) {
	if m == nil {
		return
	}
	if designType == "" {
		designType = "unspecified"
	}
	if err != nil {
		m.SampleSizeTotal.WithLabelValues(designType, "error").Inc()
		return
	}
	m.SampleSizeTotal.WithLabelValues(designType, "ok").Inc()
	m.SampleSizeResult.Observe(float64(n))
}

func (m *Metrics) RecordEnrollment(arm string) {
	if m == nil {
		return
	}
	m.EnrollmentsTotal.WithLabelValues(arm).Inc()
}

func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.AllocationErrorTotal.WithLabelValues(code).Inc()
}

// BatchStarted increments the in-flight gauge and returns the matching decrement
func (m *Metrics) BatchStarted() func() {
	if m == nil {
		return func() {}
	}
	m.BatchInFlight.Inc()
	return m.BatchInFlight.Dec
}

package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSequence_CountsFallbacks(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSequence("BLOCK", "BLOCK", 12)
	m.RecordSequence("STRATIFIED", "BLOCK", 8)
	m.RecordSequence("MINIMIZATION", "SIMPLE", 5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SequencesTotal.WithLabelValues("BLOCK", "BLOCK")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.FallbacksTotal))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.ParticipantsTotal.WithLabelValues("BLOCK")))

	expected := `
		# HELP gotrial_method_fallbacks_total Sequences where the applied method differs from the requested one
		# TYPE gotrial_method_fallbacks_total counter
		gotrial_method_fallbacks_total{applied="BLOCK",requested="STRATIFIED"} 1
		gotrial_method_fallbacks_total{applied="SIMPLE",requested="MINIMIZATION"} 1
	`
	require.NoError(t, testutil.CollectAndCompare(m.FallbacksTotal, strings.NewReader(expected)))
}

func TestRecordSampleSize(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSampleSize("RCT", 128, nil)
	m.RecordSampleSize("", 64, nil)
	m.RecordSampleSize("RCT", 0, errors.New("bad effect size"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SampleSizeTotal.WithLabelValues("RCT", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SampleSizeTotal.WithLabelValues("unspecified", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SampleSizeTotal.WithLabelValues("RCT", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SampleSizeResult))
}

func TestBatchStarted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done := m.BatchStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BatchInFlight))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSequence("SIMPLE", "SIMPLE", 3)
		m.RecordSampleSize("RCT", 10, nil)
		m.RecordEnrollment("arm-a")
		m.RecordError("INTERNAL_ERROR")
		m.BatchStarted()()
	})
}

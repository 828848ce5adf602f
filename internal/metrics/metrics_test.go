package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitsPlusMissesEqualsTotal(t *testing.T) {
	m := Default()
	m.Reset()

	for i := 0; i < 70; i++ {
		m.Request()
		m.Hit()
	}
	for i := 0; i < 30; i++ {
		m.Request()
		m.Miss()
	}

	st := m.Snapshot()
	assert.EqualValues(t, 70, st.CacheHits)
	assert.EqualValues(t, 30, st.CacheMisses)
	assert.EqualValues(t, 100, st.TotalRequests)
	assert.Equal(t, st.TotalRequests, st.CacheHits+st.CacheMisses)
	assert.InDelta(t, 70.0, st.HitRate, 0.001)
}

func TestHistogramBuckets(t *testing.T) {
	m := Default()
	m.Reset()

	m.RecordLatency(500)     // <1ms
	m.RecordLatency(2_000)   // <5ms
	m.RecordLatency(7_000)   // <10ms
	m.RecordLatency(20_000)  // <50ms
	m.RecordLatency(70_000)  // <100ms
	m.RecordLatency(250_000) // >=100ms

	st := m.Snapshot()
	assert.EqualValues(t, 1, st.LatencyBuckets.B1ms)
	assert.EqualValues(t, 1, st.LatencyBuckets.B5ms)
	assert.EqualValues(t, 1, st.LatencyBuckets.B10ms)
	assert.EqualValues(t, 1, st.LatencyBuckets.B50ms)
	assert.EqualValues(t, 1, st.LatencyBuckets.B100ms)
	assert.EqualValues(t, 1, st.LatencyBuckets.BPlus)

	assert.EqualValues(t, 1, st.P50LessThan1ms)
	assert.EqualValues(t, 1, st.P99TailEvents)
}

func TestPercentiles(t *testing.T) {
	m := Default()
	m.Reset()

	for i := uint64(1); i <= 100; i++ {
		m.RecordLatency(i)
	}

	assert.EqualValues(t, 51, m.Percentile(0.50))
	assert.EqualValues(t, 96, m.Percentile(0.95))
	assert.EqualValues(t, 100, m.Percentile(0.99))

	m.Reset()
	assert.EqualValues(t, 0, m.Percentile(0.50))
}

func TestReservoirFIFO(t *testing.T) {
	m := Default()
	m.Reset()

	// переполняем reservoir: старые сэмплы вытесняются
	for i := 0; i < maxSamples; i++ {
		m.RecordLatency(1)
	}
	for i := 0; i < 100; i++ {
		m.RecordLatency(1_000_000)
	}

	m.samplesMu.Lock()
	size := len(m.samples)
	last := m.samples[len(m.samples)-1]
	m.samplesMu.Unlock()

	assert.Equal(t, maxSamples, size)
	assert.EqualValues(t, 1_000_000, last)
}

func TestBatchStats(t *testing.T) {
	m := Default()
	m.Reset()

	m.RecordBatch(10)
	m.RecordBatch(30)

	st := m.Snapshot()
	assert.InDelta(t, 20.0, st.BatchAvgSize, 0.001)
}

func TestToJSONStableKeys(t *testing.T) {
	m := Default()
	m.Reset()

	m.Request()
	m.Hit()
	m.RecordLatency(500)
	m.RecordBatch(5)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(m.ToJSON(), &parsed))

	for _, key := range []string{
		"cache_hits", "cache_misses", "total_requests", "hit_rate",
		"avg_latency_us", "p50_latency_us", "p95_latency_us", "p99_latency_us",
		"p50_less_than_1ms", "p99_tail_events", "batch_avg_size", "histogram",
	} {
		assert.Contains(t, parsed, key)
	}

	hist, ok := parsed["histogram"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"<1ms", "<5ms", "<10ms", "<50ms", "<100ms", ">=100ms"} {
		assert.Contains(t, hist, key)
	}
}

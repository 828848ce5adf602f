package metrics

import (
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
)

/*

	Процесс-глобальные метрики: lock-free счётчики + гистограмма
	задержек + reservoir последних 10k сэмплов для перцентилей.
	Время жизни singleton-а равно времени жизни процесса.

*/

const maxSamples = 10_000 // храним последние 10k сэмплов

// Metrics — счётчики кеша и статистика задержек.
type Metrics struct {
	cacheHits      atomic.Uint64
	cacheMisses    atomic.Uint64
	totalRequests  atomic.Uint64
	totalLatencyUS atomic.Uint64

	// Бакеты: <1ms, <5ms, <10ms, <50ms, <100ms, >=100ms
	buckets [6]atomic.Uint64

	totalBatches       atomic.Uint64
	totalBatchedWrites atomic.Uint64

	samplesMu sync.Mutex
	samples   []uint64 // FIFO: старые сэмплы вытесняются
}

var std = &Metrics{}

// Default возвращает process-wide инстанс.
func Default() *Metrics {
	return std
}

// Hit фиксирует попадание в кеш.
func (m *Metrics) Hit() {
	m.cacheHits.Add(1)
	promHits.Inc()
}

// Miss фиксирует промах (отсутствие или истёкший TTL).
func (m *Metrics) Miss() {
	m.cacheMisses.Add(1)
	promMisses.Inc()
}

// Request фиксирует запрос к хранилищу.
func (m *Metrics) Request() {
	m.totalRequests.Add(1)
	promRequests.Inc()
}

// RecordLatency фиксирует задержку операции в микросекундах.
func (m *Metrics) RecordLatency(micros uint64) {
	m.totalLatencyUS.Add(micros)
	promLatency.Observe(float64(micros) / 1e6)

	millis := micros / 1000
	switch {
	case millis < 1:
		m.buckets[0].Add(1)
	case millis < 5:
		m.buckets[1].Add(1)
	case millis < 10:
		m.buckets[2].Add(1)
	case millis < 50:
		m.buckets[3].Add(1)
	case millis < 100:
		m.buckets[4].Add(1)
	default:
		m.buckets[5].Add(1)
	}

	m.samplesMu.Lock()
	if len(m.samples) >= maxSamples {
		copy(m.samples, m.samples[1:])
		m.samples[len(m.samples)-1] = micros
	} else {
		m.samples = append(m.samples, micros)
	}
	m.samplesMu.Unlock()
}

// RecordBatch фиксирует сброс батча заданного размера.
func (m *Metrics) RecordBatch(size int) {
	m.totalBatches.Add(1)
	m.totalBatchedWrites.Add(uint64(size))
	promBatchSize.Observe(float64(size))
}

// Percentile считает перцентиль по reservoir-у (p в [0,1]).
func (m *Metrics) Percentile(p float64) uint64 {
	m.samplesMu.Lock()
	sorted := make([]uint64, len(m.samples))
	copy(sorted, m.samples)
	m.samplesMu.Unlock()

	if len(sorted) == 0 {
		return 0
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Histogram — бакеты задержек для STATS.
type Histogram struct {
	B1ms   uint64 `json:"<1ms"`
	B5ms   uint64 `json:"<5ms"`
	B10ms  uint64 `json:"<10ms"`
	B50ms  uint64 `json:"<50ms"`
	B100ms uint64 `json:"<100ms"`
	BPlus  uint64 `json:">=100ms"`
}

// Stats — снимок метрик в форме ответа STATS.
type Stats struct {
	CacheHits      uint64    `json:"cache_hits"`
	CacheMisses    uint64    `json:"cache_misses"`
	TotalRequests  uint64    `json:"total_requests"`
	HitRate        float64   `json:"hit_rate"`
	AvgLatencyUS   float64   `json:"avg_latency_us"`
	P50LatencyUS   uint64    `json:"p50_latency_us"`
	P95LatencyUS   uint64    `json:"p95_latency_us"`
	P99LatencyUS   uint64    `json:"p99_latency_us"`
	P50LessThan1ms uint64    `json:"p50_less_than_1ms"`
	P99TailEvents  uint64    `json:"p99_tail_events"`
	BatchAvgSize   float64   `json:"batch_avg_size"`
	LatencyBuckets Histogram `json:"histogram"`
}

// Snapshot собирает текущее состояние счётчиков.
func (m *Metrics) Snapshot() Stats {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := m.totalRequests.Load()
	latency := m.totalLatencyUS.Load()

	var hitRate, avgLatency float64
	if total > 0 {
		hitRate = 100.0 * float64(hits) / float64(total)
		avgLatency = float64(latency) / float64(total)
	}

	batches := m.totalBatches.Load()
	batchedWrites := m.totalBatchedWrites.Load()
	var avgBatch float64
	if batches > 0 {
		avgBatch = float64(batchedWrites) / float64(batches)
	}

	hist := Histogram{
		B1ms:   m.buckets[0].Load(),
		B5ms:   m.buckets[1].Load(),
		B10ms:  m.buckets[2].Load(),
		B50ms:  m.buckets[3].Load(),
		B100ms: m.buckets[4].Load(),
		BPlus:  m.buckets[5].Load(),
	}

	return Stats{
		CacheHits:      hits,
		CacheMisses:    misses,
		TotalRequests:  total,
		HitRate:        hitRate,
		AvgLatencyUS:   avgLatency,
		P50LatencyUS:   m.Percentile(0.50),
		P95LatencyUS:   m.Percentile(0.95),
		P99LatencyUS:   m.Percentile(0.99),
		P50LessThan1ms: hist.B1ms,
		P99TailEvents:  hist.BPlus, // события >= 100ms
		BatchAvgSize:   avgBatch,
		LatencyBuckets: hist,
	}
}

// ToJSON сериализует снимок метрик для ответа STATS.
func (m *Metrics) ToJSON() []byte {
	data, _ := json.Marshal(m.Snapshot())
	return data
}

// Reset обнуляет все счётчики. Только для тестов.
func (m *Metrics) Reset() {
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.totalRequests.Store(0)
	m.totalLatencyUS.Store(0)
	for i := range m.buckets {
		m.buckets[i].Store(0)
	}
	m.totalBatches.Store(0)
	m.totalBatchedWrites.Store(0)

	m.samplesMu.Lock()
	m.samples = m.samples[:0]
	m.samplesMu.Unlock()
}

package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const maxResponseSamples = 1000

// Metrics holds application metrics
type Metrics struct {
	RequestCount int64
	ErrorCount   int64
	CacheHits    int64
	CacheMisses  int64
	StartTime    time.Time

	// Survey analysis counters
	AnalysesCompleted int64
	AnalysesFailed    int64
	RespondentsScored int64
	FlagsRaised       int64

	RateLimitIPBlocks int64

	GCCount        int64
	GCPauseTotalNs int64
	HeapAlloc      int64
	HeapSys        int64

	responseTimes []time.Duration
	responseMu    sync.RWMutex

	requestsByStatus map[int]int64
	statusMu         sync.RWMutex

	analysesByMethodology map[string]int64
	methodologyMu         sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:             time.Now(),
		responseTimes:         make([]time.Duration, 0, maxResponseSamples),
		requestsByStatus:      make(map[int]int64),
		analysesByMethodology: make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementRateLimitIPBlock counts a request rejected by the per-IP limiter.
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
}

// RecordAnalysis counts a finished analysis run.
func (m *Metrics) RecordAnalysis(methodology string, respondents, flags int) {
	atomic.AddInt64(&m.AnalysesCompleted, 1)
	atomic.AddInt64(&m.RespondentsScored, int64(respondents))
	atomic.AddInt64(&m.FlagsRaised, int64(flags))

	m.methodologyMu.Lock()
	m.analysesByMethodology[methodology]++
	m.methodologyMu.Unlock()
}

// RecordAnalysisFailure counts a rejected analysis run.
func (m *Metrics) RecordAnalysisFailure() {
	atomic.AddInt64(&m.AnalysesFailed, 1)
}

// RecordResponseTime keeps the last maxResponseSamples durations for
// percentiles.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.responseMu.Lock()
	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > maxResponseSamples {
		m.responseTimes = m.responseTimes[1:]
	}
	m.responseMu.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.requestsByStatus[statusCode]++
}

// RecordGCMetrics records Go garbage collector metrics
func (m *Metrics) RecordGCMetrics(gcCount, gcPauseTotalNs, heapAlloc, heapSys int64) {
	atomic.StoreInt64(&m.GCCount, gcCount)
	atomic.StoreInt64(&m.GCPauseTotalNs, gcPauseTotalNs)
	atomic.StoreInt64(&m.HeapAlloc, heapAlloc)
	atomic.StoreInt64(&m.HeapSys, heapSys)
}

// GetPercentileResponseTime returns the nearest-rank percentile of the kept
// samples.
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.responseMu.RLock()
	times := make([]time.Duration, len(m.responseTimes))
	copy(times, m.responseTimes)
	m.responseMu.RUnlock()

	if len(times) == 0 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}
	return times[index]
}

// GetAverageResponseTime is the mean of the kept samples.
func (m *Metrics) GetAverageResponseTime() time.Duration {
	m.responseMu.RLock()
	defer m.responseMu.RUnlock()

	if len(m.responseTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range m.responseTimes {
		total += d
	}
	return total / time.Duration(len(m.responseTimes))
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()

	distribution := make(map[int]int64, len(m.requestsByStatus))
	for code, count := range m.requestsByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetMethodologyDistribution returns completed analyses per methodology.
func (m *Metrics) GetMethodologyDistribution() map[string]int64 {
	m.methodologyMu.RLock()
	defer m.methodologyMu.RUnlock()

	out := make(map[string]int64, len(m.analysesByMethodology))
	for k, v := range m.analysesByMethodology {
		out[k] = v
	}
	return out
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	heapAlloc := atomic.LoadInt64(&m.HeapAlloc)
	heapSys := atomic.LoadInt64(&m.HeapSys)

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"start_time":             m.StartTime.Format(time.RFC3339),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     percent(errors, requests),
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": percent(cacheHits, cacheHits+cacheMisses),

		"analyses_completed":       atomic.LoadInt64(&m.AnalysesCompleted),
		"analyses_failed":          atomic.LoadInt64(&m.AnalysesFailed),
		"respondents_scored":       atomic.LoadInt64(&m.RespondentsScored),
		"flags_raised":             atomic.LoadInt64(&m.FlagsRaised),
		"analyses_by_methodology":  m.GetMethodologyDistribution(),
		"rate_limit_ip_blocks":     atomic.LoadInt64(&m.RateLimitIPBlocks),
		"status_code_distribution": m.GetStatusCodeDistribution(),
		"avg_response_time_ms":     float64(m.GetAverageResponseTime()) / 1e6,
		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1e6,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1e6,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1e6,
		"go_gc_count":              atomic.LoadInt64(&m.GCCount),
		"go_gc_pause_total_ns":     atomic.LoadInt64(&m.GCPauseTotalNs),
		"go_heap_alloc_bytes":      heapAlloc,
		"go_heap_sys_bytes":        heapSys,
		"go_heap_usage_percent":    percent(heapAlloc, heapSys),
	}
}

// Reset clears every counter (useful for testing)
func (m *Metrics) Reset() {
	for _, p := range []*int64{
		&m.RequestCount, &m.ErrorCount, &m.CacheHits, &m.CacheMisses,
		&m.AnalysesCompleted, &m.AnalysesFailed, &m.RespondentsScored, &m.FlagsRaised,
		&m.RateLimitIPBlocks, &m.GCCount, &m.GCPauseTotalNs, &m.HeapAlloc, &m.HeapSys,
	} {
		atomic.StoreInt64(p, 0)
	}

	m.responseMu.Lock()
	m.responseTimes = m.responseTimes[:0]
	m.responseMu.Unlock()

	m.statusMu.Lock()
	m.requestsByStatus = make(map[int]int64)
	m.statusMu.Unlock()

	m.methodologyMu.Lock()
	m.analysesByMethodology = make(map[string]int64)
	m.methodologyMu.Unlock()

	m.StartTime = time.Now()
}

package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// MemoryStats is one runtime memory sample.
type MemoryStats struct {
	HeapAlloc    uint64    `json:"heap_alloc_bytes"`
	HeapSys      uint64    `json:"heap_sys_bytes"`
	HeapInuse    uint64    `json:"heap_inuse_bytes"`
	HeapObjects  uint64    `json:"heap_objects"`
	PauseTotalNs uint64    `json:"gc_pause_total_ns"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
	Timestamp    time.Time `json:"timestamp"`
}

// MemoryMonitor samples runtime memory on an interval and publishes the GC
// figures to Metrics.
type MemoryMonitor struct {
	interval time.Duration
	metrics  *Metrics
	logger   *Logger

	mu     sync.RWMutex
	latest MemoryStats
}

// NewMemoryMonitor creates a monitor sampling every interval.
func NewMemoryMonitor(interval time.Duration, metrics *Metrics, logger *Logger) *MemoryMonitor {
	return &MemoryMonitor{interval: interval, metrics: metrics, logger: logger}
}

// Start samples until ctx is done.
func (mm *MemoryMonitor) Start(ctx context.Context) {
	mm.Collect()
	go func() {
		ticker := time.NewTicker(mm.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mm.Collect()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Collect takes one sample.
func (mm *MemoryMonitor) Collect() MemoryStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := MemoryStats{
		HeapAlloc:    ms.HeapAlloc,
		HeapSys:      ms.HeapSys,
		HeapInuse:    ms.HeapInuse,
		HeapObjects:  ms.HeapObjects,
		PauseTotalNs: ms.PauseTotalNs,
		NumGC:        ms.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		Timestamp:    time.Now(),
	}

	mm.mu.Lock()
	mm.latest = stats
	mm.mu.Unlock()

	if mm.metrics != nil {
		mm.metrics.RecordGCMetrics(int64(ms.NumGC), int64(ms.PauseTotalNs), int64(ms.HeapAlloc), int64(ms.HeapSys))
	}
	if mm.logger != nil {
		mm.logger.Debug("Memory Sample",
			"heap", fmt.Sprintf("%dMB/%dMB", ms.HeapInuse/(1024*1024), ms.HeapSys/(1024*1024)),
			"gc", ms.NumGC,
			"goroutines", stats.NumGoroutine,
		)
	}
	return stats
}

// Latest returns the most recent sample.
func (mm *MemoryMonitor) Latest() MemoryStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latest
}

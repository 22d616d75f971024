package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMetricsPercentiles(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.Equal(t, 99*time.Millisecond, m.GetPercentileResponseTime(99))
	assert.Equal(t, 100*time.Millisecond, m.GetPercentileResponseTime(100))
	assert.InDelta(t, float64(50500*time.Microsecond), float64(m.GetAverageResponseTime()), float64(time.Microsecond))
}

func TestMetricsKeepsRecentSamples(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < maxResponseSamples+10; i++ {
		m.RecordResponseTime(time.Second)
	}
	m.RecordResponseTime(2 * time.Second)

	assert.Equal(t, 2*time.Second, m.GetPercentileResponseTime(100))
	assert.Equal(t, time.Second, m.GetPercentileResponseTime(0))
}

func TestMetricsStats(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementCacheMiss()
	m.IncrementCacheMiss()
	m.RecordAnalysis("iso10010", 120, 3)
	m.RecordAnalysis("pda", 80, 0)
	m.RecordAnalysisFailure()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, 50.0, stats["error_rate_percent"])
	assert.Equal(t, 25.0, stats["cache_hit_rate_percent"])
	assert.Equal(t, int64(2), stats["analyses_completed"])
	assert.Equal(t, int64(1), stats["analyses_failed"])
	assert.Equal(t, int64(200), stats["respondents_scored"])
	assert.Equal(t, int64(3), stats["flags_raised"])
	assert.Equal(t, map[string]int64{"iso10010": 1, "pda": 1}, stats["analyses_by_methodology"])

	m.Reset()
	stats = m.GetStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Empty(t, stats["analyses_by_methodology"])
}

func TestMonitoringMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	metrics := NewMetrics()

	router := gin.New()
	router.Use(MonitoringMiddleware(metrics, logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/ok", "/bad"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, int64(3), metrics.RequestCount)
	assert.Equal(t, int64(1), metrics.ErrorCount)
	assert.Equal(t, map[int]int64{200: 2, 400: 1}, metrics.GetStatusCodeDistribution())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "HTTP Request", entry["msg"])
	assert.Equal(t, "/ok", entry["path"])
	assert.Equal(t, "qcscore", entry["service"])
	assert.Contains(t, entry, "timestamp")
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		userAgent string
		flagged   bool
	}{
		{"clean request", "/benchmarks/pharma", "curl/8.0", false},
		{"injection in query", "/benchmarks/x?q=1%20UNION%20SELECT%20*", "curl/8.0", true},
		{"scanner user agent", "/health", "sqlmap/1.7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			router := gin.New()
			router.Use(SecurityMonitoringMiddleware(NewLoggerWithWriter(&buf, slog.LevelInfo), 1<<20))
			router.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set("User-Agent", tt.userAgent)
			router.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.flagged, strings.Contains(buf.String(), "Security Event"))
		})
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	logger.CacheLogger("get", "0123456789abcdef", true, 4)
	assert.Empty(t, buf.String())

	logger.SetLevel(slog.LevelDebug)
	logger.CacheLogger("get", "0123456789abcdef", true, 4)
	assert.Contains(t, buf.String(), "01234567...")
}

func TestMemoryMonitor(t *testing.T) {
	metrics := NewMetrics()
	mm := NewMemoryMonitor(time.Hour, metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mm.Start(ctx)

	latest := mm.Latest()
	assert.NotZero(t, latest.HeapSys)
	assert.NotZero(t, latest.NumGoroutine)
	assert.Equal(t, int64(latest.HeapSys), metrics.HeapSys)
}

package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/encoding"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/ingest"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/middleware"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/security"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/types"
)

// server holds the long-lived dependencies shared by the handlers.
type server struct {
	config      analysis.Config
	benchmarks  *resilience.GuardedLoader
	cache       *cache.Cache
	limiter     *ratelimit.RateLimiter
	security    *security.SecurityMiddleware
	compression *middleware.CompressionMiddleware
	encoder     *encoding.Encoder
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	startedAt   time.Time
	now         func() time.Time
}

func newServer(cfg serverConfig, metrics *monitoring.Metrics, logger *monitoring.Logger) (*server, error) {
	analysisConfig, err := ingest.LoadConfigFile(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = cfg.AllowedOrigins
	if cfg.MaxBodyBytes > 0 {
		securityConfig.MaxBodyBytes = cfg.MaxBodyBytes
	}
	if cfg.RequestTimeout > 0 {
		securityConfig.RequestTimeout = cfg.RequestTimeout
	}

	limiterConfig := ratelimit.DefaultConfig()
	if cfg.RateLimitRPM > 0 {
		limiterConfig.RequestsPerMinute = cfg.RateLimitRPM
	}
	if cfg.RateLimitBurst > 0 {
		limiterConfig.Burst = cfg.RateLimitBurst
	}

	store := analysis.NewBenchmarkStore(cfg.DataDir)
	breaker := resilience.NewCircuitBreaker("benchmark_store", resilience.CircuitBreakerConfig{})

	return &server{
		config:      analysisConfig,
		benchmarks:  resilience.NewGuardedLoader(store, breaker, resilience.DefaultRetryConfig()),
		cache:       cache.NewCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		limiter:     ratelimit.NewRateLimiter(limiterConfig, metrics),
		security:    security.NewSecurityMiddleware(securityConfig),
		compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		encoder:     encoding.NewEncoder(false),
		metrics:     metrics,
		logger:      logger,
		startedAt:   time.Now(),
		now:         time.Now,
	}, nil
}

func (s *server) routes() *gin.Engine {
	r := gin.New()

	// Monitoring first so every request is counted
	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger, s.security.Config().MaxBodyBytes))
	r.Use(s.security.CORS())
	r.Use(s.compression.Handler())

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	r.Use(s.security.SecurityHeaders)
	r.Use(s.security.RequestTimeout)
	r.Use(s.security.LimitBody)
	r.Use(s.security.ValidateContentType)

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.GET("/cache/stats", s.handleCacheStats)
	r.GET("/ratelimit/status", s.limiter.HandleRateLimitStatus())

	limited := s.limiter.IPRateLimitMiddleware()
	r.POST("/analyze", limited, s.cache.Middleware("/analyze", s.metrics, s.logger), s.handleAnalyze)
	r.GET("/benchmarks/:sector", limited, s.handleBenchmark)

	return r
}

func (s *server) handleAnalyze(c *gin.Context) {
	start := time.Now()

	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}
	if err := s.security.ValidateLabels(req.Labels()); err != nil {
		_ = c.Error(err)
		return
	}

	cfg := req.Config.Apply(s.config)
	analyzer, err := analysis.NewAnalyzer(cfg, analysis.WithLogger(s.logger.Logger), analysis.WithClock(s.now))
	if err != nil {
		// A bad override is the client's mistake
		appErr := apperrors.ToAppError(err)
		appErr.HTTPStatus = http.StatusBadRequest
		_ = c.Error(appErr)
		return
	}

	matrix, err := ingest.FromRecords(req.Items, req.Responses)
	if err != nil {
		_ = c.Error(err)
		return
	}
	structure, err := analysis.NewDimensionStructure(req.Dimensions)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	var ref *analysis.Reference
	if req.Sector != "" {
		if ref, err = s.benchmarks.Load(ctx, req.Sector); err != nil {
			_ = c.Error(err)
			return
		}
	}

	report, err := analyzer.Analyze(ctx, analysis.Input{
		Matrix:    matrix,
		Structure: structure,
		Reference: ref,
		Weights:   req.Weights,
	})
	if err != nil {
		s.metrics.RecordAnalysisFailure()
		if apperrors.IsCategory(err, apperrors.CategoryConfiguration) {
			// server settings were validated at startup so weights are at fault
			appErr := apperrors.ToAppError(err)
			appErr.HTTPStatus = http.StatusBadRequest
			err = appErr
		}
		_ = c.Error(err)
		return
	}

	s.metrics.RecordAnalysis(string(report.Methodology.Kind), report.Respondents, len(report.Flags))
	s.logger.AnalysisLogger(report.ID, report.Respondents, len(report.Coverage.Scored), len(report.Flags),
		string(report.Methodology.Kind), time.Since(start))

	data, err := s.encoder.Marshal(report)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *server) handleBenchmark(c *gin.Context) {
	sector := c.Param("sector")
	if err := s.security.ValidateLabel(sector); err != nil {
		_ = c.Error(err)
		return
	}

	ref, err := s.benchmarks.Load(c.Request.Context(), sector)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (s *server) handleHealth(c *gin.Context) {
	breaker := s.benchmarks.Breaker()
	resp := types.HealthResponse{
		Status:    "ok",
		Timestamp: s.now().Format(time.RFC3339),
		Version:   version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Metrics:   s.metrics.GetStats(),
		Services: map[string]interface{}{
			"benchmark_store": breaker.GetStats(),
		},
	}

	if breaker.State() == resilience.StateOpen {
		resp.Status = "degraded"
		slog.Warn("Health check degraded", "service", "benchmark_store")
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":     s.metrics.GetStats(),
		"compression": s.compression.GetStats(),
		"rate_limit":  s.limiter.GetStats(),
		"cache":       s.cache.Stats(),
		"timestamp":   s.now().Format(time.RFC3339),
	})
}

func (s *server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}

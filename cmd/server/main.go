package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/monitoring"
)

const version = "1.0.0"

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	cfg := loadServerConfig()
	if cfg.LogLevel == "debug" {
		appLogger.SetLevel(slog.LevelDebug)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	appMetrics := monitoring.NewMetrics()
	srvDeps, err := newServer(cfg, appMetrics, appLogger)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	memoryMonitor := monitoring.NewMemoryMonitor(30*time.Second, appMetrics, appLogger)
	memoryMonitor.Start(ctx)
	srvDeps.cache.StartCleanup(ctx, time.Minute)
	srvDeps.limiter.StartCleanup(ctx, 10*time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srvDeps.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "data_dir", cfg.DataDir, "methodology", srvDeps.config.Methodology)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// serverConfig is read from the environment.
type serverConfig struct {
	Port            string
	DataDir         string
	ConfigFile      string
	GinMode         string
	LogLevel        string
	CacheTTL        time.Duration
	CacheMaxEntries int
	RateLimitRPM    int
	RateLimitBurst  int
	AllowedOrigins  []string
	MaxBodyBytes    int64
	RequestTimeout  time.Duration
}

func loadServerConfig() serverConfig {
	return serverConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		DataDir:         getEnvOrDefault("DATA_DIR", "./data"),
		ConfigFile:      os.Getenv("ANALYSIS_CONFIG"),
		GinMode:         os.Getenv("GIN_MODE"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		CacheTTL:        getEnvDuration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 256),
		RateLimitRPM:    getEnvInt("RATE_LIMIT_RPM", 30),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
		AllowedOrigins:  splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 8<<20)),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring invalid integer setting", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Ignoring invalid duration setting", "key", key, "value", value)
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

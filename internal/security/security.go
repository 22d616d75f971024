package security

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxLabelLength int           `json:"max_label_length"`
	MaxBodyBytes   int64         `json:"max_body_bytes"`
	AllowedOrigins []string      `json:"allowed_origins"`
	RequestTimeout time.Duration `json:"request_timeout"`
	EnableHSTS     bool          `json:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxLabelLength: 128,
		MaxBodyBytes:   8 << 20,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		RequestTimeout: 30 * time.Second,
	}
}

// SecurityMiddleware bundles the request hardening applied in front of the
// analysis endpoints.
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	if config.MaxLabelLength <= 0 {
		config.MaxLabelLength = DefaultSecurityConfig().MaxLabelLength
	}
	return &SecurityMiddleware{config: config}
}

// Config returns the active configuration.
func (sm *SecurityMiddleware) Config() SecurityConfig { return sm.config }

var suspiciousPatterns = []string{
	`<script`, `</script>`, `javascript:`,
	`union select`, `drop table`, `alter table`,
	`/*`, `*/`,
}

// ValidateLabel checks an item, dimension or sector name supplied by a
// client.
func (sm *SecurityMiddleware) ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return apperrors.NewValidationError("label must not be empty")
	}
	if len(label) > sm.config.MaxLabelLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("label exceeds maximum length of %d characters", sm.config.MaxLabelLength), len(label))
	}
	if strings.Contains(label, "\x00") {
		return apperrors.NewValidationError("label contains invalid characters")
	}
	if !utf8.ValidString(label) {
		return apperrors.NewValidationError("label contains invalid UTF-8 encoding")
	}

	lower := strings.ToLower(label)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			return apperrors.NewValidationError("label contains suspicious patterns", label)
		}
	}
	return nil
}

// ValidateLabels runs ValidateLabel over every label and reports the first
// failure.
func (sm *SecurityMiddleware) ValidateLabels(labels []string) error {
	for _, l := range labels {
		if err := sm.ValidateLabel(l); err != nil {
			return err
		}
	}
	return nil
}

// ValidateContentType rejects request bodies that are not JSON.
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
		c.Next()
		return
	}

	contentType := strings.ToLower(c.GetHeader("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "application/json") {
		appErr := apperrors.NewValidationError("unsupported content type", contentType)
		appErr.HTTPStatus = http.StatusUnsupportedMediaType
		_ = c.Error(appErr)
		c.Abort()
		return
	}

	c.Next()
}

// LimitBody caps the request body size.
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if sm.config.MaxBodyBytes > 0 && c.Request.Body != nil {
		if c.Request.ContentLength > sm.config.MaxBodyBytes {
			appErr := apperrors.NewValidationError("request body too large", c.Request.ContentLength)
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORS builds the cross-origin policy. An empty origin list or a "*" entry
// opens the API to every origin.
func (sm *SecurityMiddleware) CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(sm.config.AllowedOrigins) == 0
	for _, o := range sm.config.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = sm.config.AllowedOrigins
	}
	return cors.New(cfg)
}

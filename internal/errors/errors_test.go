package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
		category ErrorCategory
		status   int
	}{
		{
			name:     "validation error",
			err:      NewValidationError("bad request body", "field"),
			expected: "[VALIDATION_ERROR] bad request body",
			category: CategoryValidation,
			status:   http.StatusBadRequest,
		},
		{
			name:     "upstream data error",
			err:      NewUpstreamDataError("duplicate item id", map[string]interface{}{"item": "L1"}),
			expected: "[UPSTREAM_DATA_ERROR] duplicate item id",
			category: CategoryUpstreamData,
			status:   http.StatusBadRequest,
		},
		{
			name:     "structural mismatch",
			err:      NewStructuralMismatchError("no dimension matches", nil),
			expected: "[STRUCTURAL_MISMATCH] no dimension matches",
			category: CategoryStructural,
			status:   http.StatusUnprocessableEntity,
		},
		{
			name:     "configuration error",
			err:      NewConfigurationError("alpha threshold must be within [0, 1]", nil),
			expected: "[CONFIGURATION_ERROR] alpha threshold must be within [0, 1]",
			category: CategoryConfiguration,
			status:   http.StatusInternalServerError,
		},
		{
			name:     "degenerate input",
			err:      NewDegenerateInputError("zero variance", nil),
			expected: "[DEGENERATE_INPUT] zero variance",
			category: CategoryDegenerate,
			status:   http.StatusUnprocessableEntity,
		},
		{
			name:     "rate limit",
			err:      NewRateLimitError("60s"),
			expected: "[RATE_LIMIT_EXCEEDED] Rate limit exceeded",
			category: CategoryRateLimit,
			status:   http.StatusTooManyRequests,
		},
		{
			name:     "unavailable",
			err:      NewUnavailableError("benchmark store unavailable", errors.New("io")),
			expected: "[SERVICE_UNAVAILABLE] benchmark store unavailable",
			category: CategoryUnavailable,
			status:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestToAppError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToAppError(nil))
	})

	t.Run("app error passes through wrapping", func(t *testing.T) {
		original := NewUpstreamDataError("ragged row", nil)
		wrapped := fmt.Errorf("ingest: %w", original)
		assert.Same(t, original, ToAppError(wrapped))
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		appErr := ToAppError(context.DeadlineExceeded)
		assert.Equal(t, CategoryTimeout, appErr.Category)
	})

	t.Run("unknown maps to internal", func(t *testing.T) {
		appErr := ToAppError(errors.New("boom"))
		assert.Equal(t, CategoryInternal, appErr.Category)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	})
}

func TestIsCategory(t *testing.T) {
	err := WrapError(NewConfigurationError("scale max must exceed scale min", nil), "loading %s", "config.yaml")
	assert.True(t, IsCategory(err, CategoryConfiguration))
	assert.False(t, IsCategory(err, CategoryUpstreamData))
	assert.False(t, IsCategory(errors.New("plain"), CategoryConfiguration))
	assert.Nil(t, WrapError(nil, "ignored"))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain io error", errors.New("read: connection reset"), true},
		{"cancelled", context.Canceled, false},
		{"unavailable", NewUnavailableError("down", nil), true},
		{"timeout", NewTimeoutError("slow", nil), true},
		{"upstream data", NewUpstreamDataError("bad cuts", nil), false},
		{"wrapped validation", fmt.Errorf("load: %w", NewValidationError("bad sector")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryableError(tt.err))
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewUpstreamDataError("non-numeric value", map[string]interface{}{"row": 3}))
	})

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/fail", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"upstream_data"`)
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/panic", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"category":"internal"`)
}

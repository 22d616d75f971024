package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCompressionRouter(cm *CompressionMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/report", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"flags": strings.Repeat("degenerate_input ", 200)})
	})
	r.GET("/small", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestCompressionMiddleware(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	r := newCompressionRouter(cm)

	tests := []struct {
		name           string
		path           string
		acceptEncoding string
		expectedStatus int
		compressed     bool
	}{
		{name: "large report gzipped", path: "/report", acceptEncoding: "gzip, deflate", expectedStatus: http.StatusOK, compressed: true},
		{name: "client without gzip", path: "/report", acceptEncoding: "", expectedStatus: http.StatusOK},
		{name: "small body untouched", path: "/small", acceptEncoding: "gzip", expectedStatus: http.StatusOK},
		{name: "no content", path: "/empty", acceptEncoding: "gzip", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.compressed {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				return
			}

			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			zr, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			plain, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Contains(t, string(plain), "degenerate_input")
		})
	}

	stats := cm.GetStats()
	assert.Equal(t, int64(3), stats["total_requests"])
	assert.Equal(t, int64(1), stats["compressed_requests"])
	assert.Greater(t, stats["compression_savings"].(float64), 0.0)
}

func TestCompressionStatsEmpty(t *testing.T) {
	stats := NewCompressionStats().GetStats()
	assert.Equal(t, 1.0, stats["compression_ratio"])
	assert.Equal(t, 0.0, stats["compression_savings"])
}

func TestNewCompressionMiddlewareClampsLevel(t *testing.T) {
	cm := NewCompressionMiddleware(CompressionConfig{MinSize: 10, CompressionLevel: 42})
	assert.Equal(t, gzip.DefaultCompression, cm.config.CompressionLevel)
}

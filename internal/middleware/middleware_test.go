package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickfund/quickfund-api/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func TestCorrelationIDGenerated(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) {
		assert.NotEmpty(t, GetCorrelationID(c))
		assert.Equal(t, GetCorrelationID(c), CorrelationIDFromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	header := w.Header().Get(CorrelationIDHeader)
	require.NotEmpty(t, header)
	_, err := uuid.Parse(header)
	assert.NoError(t, err)
}

func TestCorrelationIDPropagated(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "client-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "client-supplied-id", w.Header().Get(CorrelationIDHeader))
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(1, 3).Middleware())
	router.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	var blocked int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			blocked++
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}
	assert.NotZero(t, blocked, "burst should exhaust within 10 requests")
}

func TestRateLimiterIsPerClient(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(1, 1).Middleware())
	router.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "client %d should have its own bucket", i)
	}
}

func TestRateLimiterSkipsHealth(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(1, 1).Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

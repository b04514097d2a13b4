package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRecoveryAnswers500(t *testing.T) {
	r := newEngine(Recovery(logging.NewNopLogger()))

	rec := get(r, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMMON_001")
	assert.NotContains(t, rec.Body.String(), "boom", "panic value must not leak")
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	r := newEngine(CORS([]string{"https://dashboard.example.com"}))

	rec := get(r, "/ok", map[string]string{"Origin": "https://dashboard.example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestCORSIgnoresUnlistedOrigin(t *testing.T) {
	r := newEngine(CORS([]string{"https://dashboard.example.com"}))

	rec := get(r, "/ok", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.POST("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestTokenBucketRefill(t *testing.T) {
	limiter := NewTokenBucketLimiter(10, 2)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.Allow("client")
	require.True(t, ok)
	ok, _ = limiter.Allow("client")
	require.True(t, ok)
	ok, remaining := limiter.Allow("client")
	assert.False(t, ok)
	assert.Zero(t, remaining)

	// 100ms at 10 rps refills one token.
	now = now.Add(100 * time.Millisecond)
	ok, _ = limiter.Allow("client")
	assert.True(t, ok)
}

func TestTokenBucketIsolatesKeys(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.Allow("a")
	require.True(t, ok)
	ok, _ = limiter.Allow("a")
	require.False(t, ok)

	ok, _ = limiter.Allow("b")
	assert.True(t, ok, "exhausting one key must not affect another")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(NewTokenBucketLimiter(0.001, 1)))

	rec := get(r, "/ok", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = get(r, "/ok", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMMON_007")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Health probes bypass the limiter.
	rec = get(r, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	e := echo.New()
	e.Use(Logger(zap.New(core), SkipPaths("/health")))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/ok", "/boom", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", ok["path"])
	assert.Equal(t, int64(http.StatusOK), ok["status"])
	assert.Equal(t, "10.0.0.7", ok["ip"])

	boom := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), boom["status"])
	assert.Equal(t, "boom", boom["error"])
}

type memoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (m *memoryCounter) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = ttl
	return nil
}

func newRateLimitedEcho(counter Counter, max int64, now func() time.Time) *echo.Echo {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.Use(RateLimit(RateLimitConfig{
		Counter: counter,
		Max:     max,
		Window:  time.Minute,
		now:     now,
	}))
	e.POST("/analyze-pdf", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func postFrom(e *echo.Echo, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze-pdf", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		req.Header.Set(echo.HeaderXRealIP, forwardedFor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	counter := newMemoryCounter()
	clock := time.Unix(1_700_000_010, 0)
	e := newRateLimitedEcho(counter, 2, func() time.Time { return clock })

	assert.Equal(t, http.StatusOK, postFrom(e, "1.1.1.1:5000", "").Code)
	assert.Equal(t, http.StatusOK, postFrom(e, "1.1.1.1:5001", "").Code)

	rec := postFrom(e, "1.1.1.1:5002", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests, please retry later")
	// 1_700_000_010 is 30s into its minute.
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, postFrom(e, "2.2.2.2:5000", "").Code, "limits are per ip")

	clock = clock.Add(time.Minute)
	assert.Equal(t, http.StatusOK, postFrom(e, "1.1.1.1:5003", "").Code, "new window resets the count")

	for _, ttl := range counter.expires {
		assert.Equal(t, time.Minute+time.Second, ttl)
	}
}

func TestRateLimit_ForwardedHeadersDoNotOpenNewBuckets(t *testing.T) {
	clock := time.Unix(1_700_000_010, 0)
	e := newRateLimitedEcho(newMemoryCounter(), 1, func() time.Time { return clock })

	assert.Equal(t, http.StatusOK, postFrom(e, "3.3.3.3:5000", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, postFrom(e, "3.3.3.3:5000", "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, postFrom(e, "3.3.3.3:5000", "10.0.0.3").Code)
}

func TestRateLimit_ReturnsHTTPError(t *testing.T) {
	counter := newMemoryCounter()
	mw := RateLimit(RateLimitConfig{
		Counter: counter,
		Max:     1,
		Window:  time.Minute,
		now:     func() time.Time { return time.Unix(1_700_000_010, 0) },
	})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	serve := func() error {
		req := httptest.NewRequest(http.MethodPost, "/analyze-pdf", nil)
		req.RemoteAddr = "4.4.4.4:1234"
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	require.NoError(t, serve())

	var httpErr *echo.HTTPError
	require.True(t, errors.As(serve(), &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
}

func TestRateLimit_CounterFailureLetsRequestsThrough(t *testing.T) {
	counter := newMemoryCounter()
	counter.err = errors.New("connection refused")

	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{Counter: counter, Max: 1, Window: time.Second}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

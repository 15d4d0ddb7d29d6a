package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLimiterReusesAndEvicts(t *testing.T) {
	l := newIPLimiter(100, time.Minute)
	l.ttl = time.Millisecond

	first := l.getLimiter("10.0.0.1")
	assert.Same(t, first, l.getLimiter("10.0.0.1"))

	// Backdate the entry past its TTL; the next new client evicts it.
	l.mu.Lock()
	l.clients["10.0.0.1"].lastSeen = time.Now().Add(-time.Second)
	l.mu.Unlock()

	l.getLimiter("10.0.0.2")

	l.mu.Lock()
	_, stale := l.clients["10.0.0.1"]
	_, fresh := l.clients["10.0.0.2"]
	l.mu.Unlock()
	assert.False(t, stale)
	assert.True(t, fresh)
}

func TestRateLimitMiddlewareRejectsBursts(t *testing.T) {
	// 2 requests per window yields a burst of 1.
	mw := RateLimitMiddleware(2, time.Minute)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

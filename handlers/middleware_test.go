package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecoverWritesGenericFailure(t *testing.T) {
	h := WithRequestID(Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write in /secret/path.go")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/verify", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, internalErrorMessage, env.Error)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewRateLimiter(2).Middleware(ok)

	call := func(method, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/verify", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call(http.MethodPost, "10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, call(http.MethodPost, "10.0.0.1:5001").Code)

	rec := call(http.MethodPost, "10.0.0.1:5002")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests. Please slow down.", decodeEnvelope(t, rec).Error)

	assert.Equal(t, http.StatusNoContent, call(http.MethodPost, "10.0.0.2:5000").Code)
	assert.Equal(t, http.StatusNoContent, call(http.MethodOptions, "10.0.0.1:5003").Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewRateLimiter(0).Middleware(ok)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/verify", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}

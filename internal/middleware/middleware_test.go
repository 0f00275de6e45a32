package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/paiban/oncall/internal/metrics"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(AuthConfig{APIKey: "secret", SkipPaths: []string{"/health"}})(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		path   string
		header map[string]string
		status int
	}{
		{"缺少密钥", "/api/v1/rosters", nil, http.StatusUnauthorized},
		{"错误密钥", "/api/v1/rosters", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"X-API-Key", "/api/v1/rosters", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"Bearer", "/api/v1/rosters", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"跳过路径", "/health", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	h := AuthMiddleware(AuthConfig{})(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rosters", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	h := chimw.RequestID(RequestIDHeader(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"https://oncall.example.com"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/rosters", nil)
	req.Header.Set("Origin", "https://oncall.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://oncall.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/rosters", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(NewRateLimiter(1))(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestLoggingMiddleware_RecordsRoutePattern(t *testing.T) {
	registry := metrics.NewRegistry()

	r := chi.NewRouter()
	r.Use(LoggingMiddleware(registry))
	r.Get("/rosters/{id}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rosters/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv := httptest.NewServer(registry.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if assert.NoError(t, err) {
		defer resp.Body.Close()
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, resp.Body)
		assert.Contains(t, buf.String(), `path="/rosters/{id}"`)
	}
}

package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "surveybench/internal/errors"
	"surveybench/internal/infrastructure"
	"surveybench/internal/shared/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestErrorHandler(logger *slog.Logger) *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(logger, false)
}

func readerOf(s string) io.Reader {
	return strings.NewReader(s)
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var gotID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetReqID(r.Context())
		assert.Equal(t, gotID, infrastructure.GetTraceID(r.Context()))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/surveys", nil)
	handler.ServeHTTP(w, r)

	require.NotEmpty(t, gotID)
	assert.Equal(t, gotID, w.Header().Get("X-Request-ID"))
}

func TestRequestID_PreservesHeader(t *testing.T) {
	var gotID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetReqID(r.Context())
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/surveys", nil)
	r.Header.Set("X-Request-ID", "client-supplied-id")
	handler.ServeHTTP(w, r)

	assert.Equal(t, "client-supplied-id", gotID)
}

func TestStructuredLogger_LevelsByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  slog.Level
	}{
		{"success logs info", http.StatusOK, slog.LevelInfo},
		{"client error logs warn", http.StatusBadRequest, slog.LevelWarn},
		{"server error logs error", http.StatusInternalServerError, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := testutil.NewLogCapture()
			handler := StructuredLogger(capture.Logger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/benchmark/filters", nil))

			assert.True(t, capture.Has(tt.level, "request completed"))
			status, ok := capture.Attr("request completed", "status")
			require.True(t, ok)
			assert.Equal(t, int64(tt.status), status)
		})
	}
}

func TestStructuredLogger_RedactsFailedRequestBody(t *testing.T) {
	capture := testutil.NewLogCapture()
	handler := StructuredLogger(capture.Logger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusBadRequest)
	}))

	body := `{"metric":"tcc","token":"abc123"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/benchmark/percentile", readerOf(body))
	r.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, r)

	logged, ok := capture.Attr("request completed", "request_body")
	require.True(t, ok, "failed requests must log their body")
	assert.Contains(t, logged, "[REDACTED]")
	assert.NotContains(t, logged, "abc123")
	assert.Contains(t, logged, "tcc")
}

func TestSanitizeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want func(t *testing.T, got string)
	}{
		{
			name: "redacts credential fields",
			body: `{"password":"hunter2","specialty":"Cardiology"}`,
			want: func(t *testing.T, got string) {
				assert.NotContains(t, got, "hunter2")
				assert.Contains(t, got, "Cardiology")
			},
		},
		{
			name: "non-json passes through",
			body: "metric=tcc&value=0",
			want: func(t *testing.T, got string) {
				assert.Equal(t, "metric=tcc&value=0", got)
			},
		},
		{
			name: "long bodies are truncated",
			body: strings.Repeat("x", 600),
			want: func(t *testing.T, got string) {
				assert.Len(t, got, 503)
				assert.True(t, strings.HasSuffix(got, "..."))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, sanitizeBody([]byte(tt.body)))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1, discardLogger())
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First request within burst succeeds.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/benchmark", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Burst exhausted, second immediate request is rejected.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/benchmark", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/benchmark", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins: []string{"http://localhost:8080"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach handler")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/benchmark", nil)
	r.Header.Set("Origin", "http://localhost:8080")
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowedOrigins: []string{"http://localhost:8080"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/benchmark", nil)
	r.Header.Set("Origin", "http://evil.example.com")
	handler.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureHeaders(t *testing.T) {
	sh := DefaultSecureHeaders()
	handler := sh.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestSecureHeaders_SkipsWebSocketUpgrade(t *testing.T) {
	sh := DefaultSecureHeaders()
	handler := sh.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Upgrade", "websocket")
	handler.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("X-Frame-Options"))
}

func TestValidationMiddleware_InvalidJSON(t *testing.T) {
	logger := discardLogger()
	vm := NewValidationMiddleware(logger, newTestErrorHandler(logger))

	handler := vm.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid body must not reach handler")
	}))

	body := "{not json"
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/mappings", io.NopCloser(readerOf(body)))
	r.ContentLength = int64(len(body))
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidationMiddleware_ValidateStruct(t *testing.T) {
	logger := discardLogger()
	vm := NewValidationMiddleware(logger, newTestErrorHandler(logger))

	type percentileRequest struct {
		Metric string  `json:"metric" validate:"required,metric"`
		Value  float64 `json:"value" validate:"required,gt=0"`
	}

	assert.NoError(t, vm.ValidateStruct(percentileRequest{Metric: "tcc", Value: 400000}))
	assert.Error(t, vm.ValidateStruct(percentileRequest{Metric: "tcc"}))
	assert.Error(t, vm.ValidateStruct(percentileRequest{Metric: "equity", Value: 1}))
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("application/json")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/mappings", nil)
	r.Header.Set("Content-Type", "text/plain")
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/mappings", nil)
	r.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQueryParamValidator(t *testing.T) {
	logger := discardLogger()
	qv := NewQueryParamValidator(logger, newTestErrorHandler(logger))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/surveys?limit=50", nil)
	limit, ok := qv.ValidateInt(w, r, "limit", 1, 1000, 100)
	require.True(t, ok)
	assert.Equal(t, 50, limit)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/surveys?limit=5000", nil)
	_, ok = qv.ValidateInt(w, r, "limit", 1, 1000, 100)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/benchmark?agg=weighted", nil)
	agg, ok := qv.ValidateEnum(w, r, "agg", []string{"simple", "weighted"}, "simple")
	require.True(t, ok)
	assert.Equal(t, "weighted", agg)
}

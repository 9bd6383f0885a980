package middlewares

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_Handle(t *testing.T) {
	testCases := map[string]struct {
		handler        http.HandlerFunc
		expectedStatus float64
		expectedLevel  string
	}{
		"should log implicit 200 at info": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			expectedStatus: 200,
			expectedLevel:  "INFO",
		},
		"should log server errors at error": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedStatus: 500,
			expectedLevel:  "ERROR",
		},
		"should log handlers that write nothing as 200": {
			handler:        func(_ http.ResponseWriter, _ *http.Request) {},
			expectedStatus: 200,
			expectedLevel:  "INFO",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			rr := httptest.NewRecorder()
			NewRequestLogger(logger).Handle(tc.handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "http_request", entry["msg"])
			assert.Equal(t, tc.expectedLevel, entry["level"])
			assert.Equal(t, tc.expectedStatus, entry["status"])
			assert.Equal(t, "/health", entry["path"])
		})
	}
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return MiddlewareFunc(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	h := Chain(okHandler(), tag("first"), tag("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, []string{"first", "second"}, order)
}

package middle

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		Logger(r.Context(), zap.NewNop()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}), RequestIDMiddleware(log), LoggingMiddleware(log))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.True(t, strings.HasPrefix(seen, "req-"))
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	inside := logs.FilterMessage("inside").All()
	require.Len(t, inside, 1)
	assert.Equal(t, seen, inside[0].ContextMap()["request_id"])

	done := logs.FilterMessage("Request completed").All()
	require.Len(t, done, 1)
	ctx := done[0].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, ctx["status"])
	assert.Equal(t, seen, ctx["request_id"])
}

func TestLoggingRecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("Internal Server Error").Len())
}

func TestContextHelpersWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestID(r.Context()))

	fallback := zap.NewNop()
	assert.Same(t, fallback, Logger(r.Context(), fallback))
}

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestStructuredLogger(t *testing.T) {
	t.Run("logs status, route and request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		r := chi.NewRouter()
		r.Use(middleware.RequestID, StructuredLogger(logger))
		r.Get("/api/v1/spots/{contentID}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/spots/126508", nil))

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "Request completed", entry["msg"])
		assert.Equal(t, "WARN", entry["level"])
		assert.EqualValues(t, http.StatusNotFound, entry["status"])
		assert.Equal(t, "/api/v1/spots/126508", entry["path"])
		assert.Equal(t, "/api/v1/spots/{contentID}", entry["route"])
		assert.NotEmpty(t, entry["req_id"])
	})

	t.Run("defaults to 200 when handler writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/festivals", nil))

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.EqualValues(t, http.StatusOK, entry["status"])
		assert.Equal(t, "/api/v1/festivals", entry["route"])
	})

	t.Run("probes are debug only", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		handler := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Empty(t, buf.String())
	})
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFor("/ping", http.StatusBadGateway))
	assert.Equal(t, slog.LevelWarn, levelFor("/swagger/index.html", http.StatusNotFound))
	assert.Equal(t, slog.LevelDebug, levelFor("/swagger/index.html", http.StatusOK))
	assert.Equal(t, slog.LevelInfo, levelFor("/api/v1/recommend/chat", http.StatusOK))
}

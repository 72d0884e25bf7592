package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-go/internal/apperr"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "Failed to parse JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("json", "info", &buf)

	logger.Info("test message")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "level")
	assert.NotContains(t, entry, "request_id")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("text", "info", &buf)

	logger.Info("test message", "user_id", "u-1")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "user_id=u-1")
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("json", "warn", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Equal(t, "kept", decodeLine(t, &buf)["msg"])
}

func TestHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("json", "debug", &buf)

	var reqID string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = middleware.GetReqID(r.Context())
		logger.InfoContext(r.Context(), "in request")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, reqID)
	assert.Equal(t, reqID, decodeLine(t, &buf)["request_id"])
}

func TestHandler_WithAttrsKeepsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("json", "debug", &buf).With("component", "test")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	logger.InfoContext(ctx, "hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "test", entry["component"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(Setup("json", "debug", &buf))
	t.Cleanup(func() { slog.SetDefault(orig) })

	err := apperr.Persistence(errors.New("connection refused"), "insert user", "user_name", "alice")
	Error(context.Background(), "registration failed", err)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "registration failed", entry["msg"])
	assert.Equal(t, string(apperr.KindPersistence), entry["code"])
	assert.Contains(t, entry["error"], "connection refused")

	c, ok := entry["context"].(map[string]any)
	require.True(t, ok, "context attribute missing: %s", buf.String())
	assert.Equal(t, "insert user", c["operation"])
	assert.Equal(t, "alice", c["user_name"])
}

func TestError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(Setup("json", "debug", &buf))
	t.Cleanup(func() { slog.SetDefault(orig) })

	Error(context.Background(), "boom", errors.New("plain"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "plain", entry["error"])
	assert.NotContains(t, entry, "code")
}

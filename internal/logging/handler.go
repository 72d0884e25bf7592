// Package logging provides structured logging enriched with the request id.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"
)

// requestIDHandler wraps a slog.Handler to add the chi request id.
type requestIDHandler struct {
	handler slog.Handler
}

// Handle adds the request id to the record when the context carries one.
func (h *requestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := middleware.GetReqID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.handler.Handle(ctx, r)
}

func (h *requestIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIDHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *requestIDHandler) WithGroup(name string) slog.Handler {
	return &requestIDHandler{handler: h.handler.WithGroup(name)}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// level: "debug", "info", "warn" or "error" (defaults to "info")
// If w is nil, writes to os.Stderr.
func Setup(format, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var base slog.Handler
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&requestIDHandler{handler: base})
}

// SetDefault sets up and installs the default logger.
func SetDefault(format, level string) {
	slog.SetDefault(Setup(format, level, nil))
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error logs err on the default logger. For oops errors the code and the
// attached context are logged as separate attributes.
func Error(ctx context.Context, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		slog.ErrorContext(ctx, msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil && code != "" {
		attrs = append(attrs, "code", code)
	}
	if c := oopsErr.Context(); len(c) > 0 {
		attrs = append(attrs, "context", c)
	}
	slog.ErrorContext(ctx, msg, attrs...)
}

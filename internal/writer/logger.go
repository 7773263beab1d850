package writer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// multiHandler wraps multiple handlers to write to multiple destinations
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// SetupLogger creates a logger writing text to stderr and, when logPath is
// not empty, JSON to the log file. The returned file is nil without a log path.
func SetupLogger(logPath string, logLevel slog.Level) (*slog.Logger, *os.File, error) {
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	if logPath == "" {
		return slog.New(textHandler), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	jsonHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(&multiHandler{
		handlers: []slog.Handler{textHandler, jsonHandler},
	})

	return logger, logFile, nil
}

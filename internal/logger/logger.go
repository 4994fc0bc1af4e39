package logger

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"product-api/internal/utils"

	"go.opentelemetry.io/otel/trace"
)

// Instance is the process-wide JSON logger. Every line carries the
// hostname.
var Instance = sync.OnceValue(func() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler).With(slog.String("hostname", utils.GetHost()))
})

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

// emit writes locally and, when configured, ships the same attributes to
// the remote sink.
func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs = append(attrs[:len(attrs):len(attrs)], traceAttrs(ctx)...)
	Instance().LogAttrs(ctx, level, msg, attrs...)
	sendLog(level, msg, attrs)
}

func traceAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
}

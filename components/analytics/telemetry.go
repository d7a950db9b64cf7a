package analytics

import (
	"context"
	"log/slog"
)

// Telemetry records analytics events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes events as debug records.
type SlogTelemetry struct {
	Logger *slog.Logger
}

// Record implements Telemetry.
func (t SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	logger.DebugContext(ctx, event, attrs...)
}

func normalizeLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

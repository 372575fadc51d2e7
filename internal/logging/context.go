package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID identifies one cancomp run across all of its log lines.
	FieldCorrelationID = "correlation_id"
	// FieldRGID is the MusicBrainz release group under lookup.
	FieldRGID = "rgid"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	correlationIDKey contextKey = iota
	rgidKey
)

// WithCorrelationID attaches the run correlation ID to ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the run correlation ID, if any.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(correlationIDKey).(string)
	return id, ok && id != ""
}

// WithRGID attaches the release group currently being processed to ctx.
func WithRGID(ctx context.Context, rgid string) context.Context {
	return context.WithValue(ctx, rgidKey, rgid)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id, ok := CorrelationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, id))
	}
	if rgid, ok := ctx.Value(rgidKey).(string); ok && rgid != "" {
		fields = append(fields, slog.String(FieldRGID, rgid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

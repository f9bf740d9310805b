package logging

import (
	"context"
	"log/slog"

	"crosswalk/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID is the standardized structured logging key for resolution correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldContentType is the standardized structured logging key for the content type under resolution.
	FieldContentType = "content_type"
	// FieldProvider is the standardized structured logging key for upstream provider names.
	FieldProvider = "provider"
	// FieldOperation is the standardized structured logging key for the upstream operation attempted.
	FieldOperation = "operation"
	// FieldEventType categorizes operator-facing warnings and errors.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized key for the operator's suggested next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if rid, ok := services.CorrelationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	if ct, ok := services.ContentTypeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldContentType, ct))
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
	return logger.With(attrsToArgs(fields)...)
}

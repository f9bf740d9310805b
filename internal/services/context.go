package services

import "context"

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	contentTypeKey   contextKey = "content_type"
)

// WithCorrelationID annotates context with a resolution correlation identifier.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation identifier if present.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(correlationIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithContentType annotates context with the content type under resolution.
func WithContentType(ctx context.Context, contentType string) context.Context {
	if contentType == "" {
		return ctx
	}
	return context.WithValue(ctx, contentTypeKey, contentType)
}

// ContentTypeFromContext returns the content type if present.
func ContentTypeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(contentTypeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

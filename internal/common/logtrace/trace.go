package logtrace

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying a request correlation ID. An
// existing ID is preserved so a caller spanning several pipeline calls can
// correlate them under one ID.
func WithRequestID(ctx context.Context) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, uuid.NewString())
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return id
}

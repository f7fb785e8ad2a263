// Package requestid threads a per-request correlation ID through
// context.Context so it can reach the logger and any outbound calls a
// handler makes without being passed explicitly down every call chain.
package requestid

import (
	"context"

	"github.com/ottoassistant/otto/internal/idgen"
)

type ctxKey struct{}

// New mints a request ID. It reuses idgen's ULID generator rather than
// a separate UUID source, so request IDs sort the same way job and run
// IDs do in logs pulled from the same time window.
func New() string {
	return idgen.New()
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

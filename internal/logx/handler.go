// Package logx builds the process-wide slog.Logger: a tint handler for
// local development and a JSON handler everywhere else, both wrapped so
// every record picks up the request ID and control-plane label carried
// on its context.
package logx

import (
	"context"
	"log/slog"

	"github.com/ottoassistant/otto/internal/requestid"
)

type planeKey struct{}

// WithPlane tags ctx with the control plane handling the request
// ("internal" or "external"), so a record logged deep inside a shared
// handler still shows which bearer-token surface it came in on.
func WithPlane(ctx context.Context, plane string) context.Context {
	return context.WithValue(ctx, planeKey{}, plane)
}

// PlaneFromContext extracts the control plane attached by WithPlane.
// Returns "" if absent, which covers background work (scheduler ticks,
// outbound delivery) that never goes through an HTTP handler.
func PlaneFromContext(ctx context.Context) string {
	plane, _ := ctx.Value(planeKey{}).(string)
	return plane
}

// ContextHandler wraps an slog.Handler and enriches each record with
// the request_id and plane carried on the record's context.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if plane := PlaneFromContext(ctx); plane != "" {
		r.AddAttrs(slog.String("plane", plane))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

package requestid

import (
	"context"
	"testing"
)

func TestFromContext_ReturnsEmptyWhenAbsent(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("FromContext() = %q, want empty string", got)
	}
}

func TestWithRequestID_RoundTrips(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := FromContext(ctx); got != "req-123" {
		t.Fatalf("FromContext() = %q, want req-123", got)
	}
}

func TestNew_ProducesDistinctIDs(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatal("expected distinct generated IDs")
	}
}

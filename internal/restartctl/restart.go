// Package restartctl declares the collaborator the external control
// plane's restart endpoint invokes. Process supervision (how a restart
// is actually effected — re-exec, signal to a supervisor, container
// restart) is an installation concern; Otto's core only needs to call
// it and audit the attempt.
package restartctl

import "context"

// Runtime is implemented by whatever process supervisor an
// installation wires in.
type Runtime interface {
	Restart(ctx context.Context) error
}

// RuntimeFunc adapts a plain function to Runtime.
type RuntimeFunc func(ctx context.Context) error

func (f RuntimeFunc) Restart(ctx context.Context) error { return f(ctx) }

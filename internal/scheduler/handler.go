package scheduler

import (
	"context"

	"github.com/ottoassistant/otto/internal/domain"
)

// HandlerResult is what a job handler reports back to the scheduler.
type HandlerResult struct {
	Status       domain.RunStatus
	ErrorCode    *string
	ErrorMessage *string
	ResultJSON   *string
}

// Handler executes one firing of a job. Handlers must be idempotent:
// a reclaimed lease can cause the same logical firing to run twice. The
// context is cancelled when the job's lease expires; handlers must poll
// ctx.Done() and return promptly.
type Handler func(ctx context.Context, job *domain.Job) (HandlerResult, error)

// Registry maps job type to Handler.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(jobType string, h Handler) {
	r.handlers[jobType] = h
}

func (r *Registry) Lookup(jobType string) (Handler, bool) {
	h, ok := r.handlers[jobType]
	return h, ok
}

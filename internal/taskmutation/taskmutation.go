// Package taskmutation implements createTask/updateTask/deleteTask/
// runTaskNow with the lane, mutability, terminal-state, and schema
// checks shared by both control planes.
package taskmutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ottoassistant/otto/internal/audit"
	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/repository"
)

// Result is the response envelope returned from every mutation.
type Result struct {
	Outcome      string // created|updated|deleted|run_now_scheduled
	Job          *domain.Job
	ScheduledFor *int64
}

// CreateInput carries a create request's submitted fields.
type CreateInput struct {
	Type           string
	ScheduleType   domain.ScheduleType
	ProfileID      *string
	ModelRef       *string
	Payload        *string
	RunAt          *int64
	CadenceMinutes *int
}

// UpdateInput carries only the fields the caller actually submitted;
// nil means "leave unchanged".
type UpdateInput struct {
	ScheduleType   *domain.ScheduleType
	ProfileID      *string
	ModelRef       *string
	Payload        *string
	RunAt          *int64
	CadenceMinutes *int
	Status         *domain.JobStatus
}

type Service struct {
	jobs  repository.JobRepository
	audit *audit.Log
}

func New(jobs repository.JobRepository, auditLog *audit.Log) *Service {
	return &Service{jobs: jobs, audit: auditLog}
}

// checkLane rejects mutation calls whose lane is scheduled: that lane
// is reserved for the scheduler's own writes, never for a control
// plane acting on an operator's or tool's behalf.
func checkLane(lane domain.Lane) error {
	if lane == domain.LaneScheduled {
		return fmt.Errorf("mutation from lane %s: %w", lane, domain.ErrForbiddenMutation)
	}
	return nil
}

func checkMutable(job *domain.Job) error {
	if !job.IsMutable() {
		return fmt.Errorf("job %s is system-managed: %w", job.ID, domain.ErrForbiddenMutation)
	}
	return nil
}

func checkNotTerminal(job *domain.Job) error {
	if job.IsTerminal() {
		return fmt.Errorf("job %s is terminal: %w", job.ID, domain.ErrStateConflict)
	}
	return nil
}

func validateSchedule(scheduleType domain.ScheduleType, runAt *int64, cadenceMinutes *int) error {
	switch scheduleType {
	case domain.ScheduleOneshot:
		if runAt == nil {
			return domain.NewValidationError(domain.FieldError{Field: "runAt", Message: "required for oneshot jobs"})
		}
		if cadenceMinutes != nil {
			return domain.NewValidationError(domain.FieldError{Field: "cadenceMinutes", Message: "must be null for oneshot jobs"})
		}
	case domain.ScheduleRecurring:
		if cadenceMinutes == nil || *cadenceMinutes <= 0 {
			return domain.NewValidationError(domain.FieldError{Field: "cadenceMinutes", Message: "required and must be positive for recurring jobs"})
		}
	default:
		return domain.NewValidationError(domain.FieldError{Field: "scheduleType", Message: "must be recurring or oneshot"})
	}
	return nil
}

// CreateTask computes nextRunAt from runAt (oneshot) or now (recurring
// start) and writes a create audit row.
func (s *Service) CreateTask(ctx context.Context, in CreateInput, lane domain.Lane, actor string) (*Result, error) {
	if err := checkLane(lane); err != nil {
		return nil, err
	}
	if in.Type == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "type", Message: "required"})
	}
	if domain.IsSystemReservedType(in.Type) {
		return nil, fmt.Errorf("type %q is system-reserved: %w", in.Type, domain.ErrForbiddenMutation)
	}
	if err := validateSchedule(in.ScheduleType, in.RunAt, in.CadenceMinutes); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	var nextRunAt int64
	if in.ScheduleType == domain.ScheduleOneshot {
		nextRunAt = *in.RunAt
	} else {
		nextRunAt = now
	}

	job := &domain.Job{
		ID:             idgen.New(),
		Type:           in.Type,
		ScheduleType:   in.ScheduleType,
		Status:         domain.JobIdle,
		ProfileID:      in.ProfileID,
		ModelRef:       in.ModelRef,
		Payload:        in.Payload,
		RunAt:          in.RunAt,
		CadenceMinutes: in.CadenceMinutes,
		NextRunAt:      &nextRunAt,
		CreatedAt:      now,
		UpdatedAt:      now,
		ManagedBy:      domain.ManagedByOperator,
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := s.audit.RecordTask(ctx, created.ID, domain.AuditCreate, lane, actor, nil, created, nil); err != nil {
		return nil, fmt.Errorf("record create audit: %w", err)
	}

	return &Result{Outcome: "created", Job: created}, nil
}

// UpdateTask loads the existing record, merges only submitted fields,
// re-validates invariants, recomputes nextRunAt if schedule fields
// change, and writes an update audit row.
func (s *Service) UpdateTask(ctx context.Context, id string, in UpdateInput, lane domain.Lane, actor string) (*Result, error) {
	if err := checkLane(lane); err != nil {
		return nil, err
	}

	existing, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(existing); err != nil {
		return nil, err
	}
	if err := checkNotTerminal(existing); err != nil {
		return nil, err
	}

	before := *existing
	updated := *existing

	scheduleChanged := false
	if in.ScheduleType != nil {
		updated.ScheduleType = *in.ScheduleType
		scheduleChanged = true
	}
	if in.RunAt != nil {
		updated.RunAt = in.RunAt
		scheduleChanged = true
	}
	if in.CadenceMinutes != nil {
		updated.CadenceMinutes = in.CadenceMinutes
		scheduleChanged = true
	}
	if in.ProfileID != nil {
		updated.ProfileID = in.ProfileID
	}
	if in.ModelRef != nil {
		updated.ModelRef = in.ModelRef
	}
	if in.Payload != nil {
		updated.Payload = in.Payload
	}
	if in.Status != nil {
		updated.Status = *in.Status
	}

	if err := validateSchedule(updated.ScheduleType, updated.RunAt, updated.CadenceMinutes); err != nil {
		return nil, err
	}

	if scheduleChanged {
		now := time.Now().UnixMilli()
		if updated.ScheduleType == domain.ScheduleOneshot {
			updated.NextRunAt = updated.RunAt
		} else {
			updated.NextRunAt = &now
		}
	}
	updated.UpdatedAt = time.Now().UnixMilli()

	saved, err := s.jobs.Update(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := s.audit.RecordTask(ctx, saved.ID, domain.AuditUpdate, lane, actor, &before, saved, nil); err != nil {
		return nil, fmt.Errorf("record update audit: %w", err)
	}

	return &Result{Outcome: "updated", Job: saved}, nil
}

// DeleteTask logically cancels a job: clears its schedule, sets a
// terminal state, and writes a delete audit row.
func (s *Service) DeleteTask(ctx context.Context, id, reason string, lane domain.Lane, actor string) (*Result, error) {
	if err := checkLane(lane); err != nil {
		return nil, err
	}

	existing, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(existing); err != nil {
		return nil, err
	}
	if err := checkNotTerminal(existing); err != nil {
		return nil, err
	}

	before := *existing
	if err := s.jobs.Cancel(ctx, id, reason); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	metadata := map[string]string{"reason": reason}
	if err := s.audit.RecordTask(ctx, id, domain.AuditDelete, lane, actor, &before, nil, metadata); err != nil {
		return nil, fmt.Errorf("record delete audit: %w", err)
	}

	return &Result{Outcome: "deleted"}, nil
}

// RunTaskNow sets nextRunAt=now, leaving other fields intact, and
// writes an update audit row tagged {runNow:true}.
func (s *Service) RunTaskNow(ctx context.Context, id string, lane domain.Lane, actor string) (*Result, error) {
	if err := checkLane(lane); err != nil {
		return nil, err
	}

	existing, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(existing); err != nil {
		return nil, err
	}
	if err := checkNotTerminal(existing); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	before := *existing
	updated := *existing
	updated.NextRunAt = &now
	updated.UpdatedAt = now

	saved, err := s.jobs.Update(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("run task now: %w", err)
	}

	metadata := map[string]bool{"runNow": true}
	if err := s.audit.RecordTask(ctx, saved.ID, domain.AuditUpdate, lane, actor, &before, saved, metadata); err != nil {
		return nil, fmt.Errorf("record run-now audit: %w", err)
	}

	return &Result{Outcome: "run_now_scheduled", Job: saved, ScheduledFor: &now}, nil
}

// IsNotFound reports whether err represents an entity lookup miss, for
// control-plane handlers translating errors to status codes.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrJobNotFound)
}

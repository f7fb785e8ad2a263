package taskmutation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ottoassistant/otto/internal/audit"
	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/taskmutation"
)

// ---- fakes ----

type fakeJobRepo struct {
	create              func(ctx context.Context, job *domain.Job) (*domain.Job, error)
	update              func(ctx context.Context, job *domain.Job) (*domain.Job, error)
	getByID             func(ctx context.Context, id string) (*domain.Job, error)
	cancel              func(ctx context.Context, id, reason string) error
	list                func(ctx context.Context, filter repository.ListJobsFilter) ([]*domain.Job, error)
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	return r.create(ctx, job)
}
func (r *fakeJobRepo) Update(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	return r.update(ctx, job)
}
func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return r.getByID(ctx, id)
}
func (r *fakeJobRepo) List(ctx context.Context, filter repository.ListJobsFilter) ([]*domain.Job, error) {
	if r.list != nil {
		return r.list(ctx, filter)
	}
	return nil, nil
}
func (r *fakeJobRepo) Delete(ctx context.Context, id string) error { return nil }
func (r *fakeJobRepo) ClaimDue(ctx context.Context, now, leaseDuration int64, limit int) ([]*domain.Job, error) {
	return nil, nil
}
func (r *fakeJobRepo) ReleaseLock(ctx context.Context, jobID, lockToken string) error { return nil }
func (r *fakeJobRepo) RescheduleRecurring(ctx context.Context, jobID, lockToken string, lastRunAt, nextRunAt int64) error {
	return nil
}
func (r *fakeJobRepo) FinalizeOneShot(ctx context.Context, jobID, lockToken string, lastRunAt int64, state domain.TerminalState, reason string) error {
	return nil
}
func (r *fakeJobRepo) Cancel(ctx context.Context, jobID, reason string) error {
	return r.cancel(ctx, jobID, reason)
}

type fakeAuditRepo struct {
	recordedTasks []*domain.TaskAudit
}

func (r *fakeAuditRepo) RecordTaskAudit(ctx context.Context, entry *domain.TaskAudit) error {
	r.recordedTasks = append(r.recordedTasks, entry)
	return nil
}
func (r *fakeAuditRepo) ListTaskAudit(ctx context.Context, taskID string, limit int) ([]*domain.TaskAudit, error) {
	return r.recordedTasks, nil
}
func (r *fakeAuditRepo) RecordCommandAudit(ctx context.Context, entry *domain.CommandAudit) error {
	return nil
}
func (r *fakeAuditRepo) ListCommandAudit(ctx context.Context, limit int) ([]*domain.CommandAudit, error) {
	return nil, nil
}
func (r *fakeAuditRepo) DeleteTaskAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return 0, nil
}
func (r *fakeAuditRepo) DeleteCommandAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return 0, nil
}

func newService(jobs *fakeJobRepo, auditRepo *fakeAuditRepo) *taskmutation.Service {
	return taskmutation.New(jobs, audit.New(auditRepo))
}

// ---- CreateTask ----

func TestCreateTask_ScheduledLane_Rejected(t *testing.T) {
	svc := newService(&fakeJobRepo{}, &fakeAuditRepo{})

	_, err := svc.CreateTask(context.Background(), taskmutation.CreateInput{
		Type: "daily_digest", ScheduleType: domain.ScheduleRecurring, CadenceMinutes: intPtr(60),
	}, domain.LaneScheduled, "scheduler")

	if !errors.Is(err, domain.ErrForbiddenMutation) {
		t.Fatalf("want ErrForbiddenMutation, got %v", err)
	}
}

func TestCreateTask_SystemReservedType_Rejected(t *testing.T) {
	svc := newService(&fakeJobRepo{}, &fakeAuditRepo{})

	_, err := svc.CreateTask(context.Background(), taskmutation.CreateInput{
		Type: "heartbeat", ScheduleType: domain.ScheduleRecurring, CadenceMinutes: intPtr(60),
	}, domain.LaneInteractive, "assistant")

	if !errors.Is(err, domain.ErrForbiddenMutation) {
		t.Fatalf("want ErrForbiddenMutation, got %v", err)
	}
}

func TestCreateTask_OneshotWithoutRunAt_Rejected(t *testing.T) {
	svc := newService(&fakeJobRepo{}, &fakeAuditRepo{})

	_, err := svc.CreateTask(context.Background(), taskmutation.CreateInput{
		Type: "reminder", ScheduleType: domain.ScheduleOneshot,
	}, domain.LaneInteractive, "assistant")

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("want *domain.ValidationError, got %v", err)
	}
}

func TestCreateTask_RecurringSetsNextRunAtToNow_AndAudits(t *testing.T) {
	var created *domain.Job
	jobs := &fakeJobRepo{
		create: func(_ context.Context, job *domain.Job) (*domain.Job, error) {
			created = job
			return job, nil
		},
	}
	auditRepo := &fakeAuditRepo{}
	svc := newService(jobs, auditRepo)

	result, err := svc.CreateTask(context.Background(), taskmutation.CreateInput{
		Type: "daily_digest", ScheduleType: domain.ScheduleRecurring, CadenceMinutes: intPtr(60),
	}, domain.LaneInteractive, "assistant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != "created" {
		t.Errorf("outcome = %q, want created", result.Outcome)
	}
	if created.NextRunAt == nil {
		t.Fatal("nextRunAt not set")
	}
	if len(auditRepo.recordedTasks) != 1 || auditRepo.recordedTasks[0].Action != domain.AuditCreate {
		t.Fatalf("expected one create audit row, got %+v", auditRepo.recordedTasks)
	}
}

// ---- UpdateTask ----

func TestUpdateTask_SystemManagedJob_Rejected(t *testing.T) {
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, Type: "heartbeat", ManagedBy: domain.ManagedBySystem, ScheduleType: domain.ScheduleRecurring, CadenceMinutes: intPtr(60)}, nil
		},
	}
	svc := newService(jobs, &fakeAuditRepo{})

	_, err := svc.UpdateTask(context.Background(), "job-1", taskmutation.UpdateInput{}, domain.LaneInteractive, "assistant")
	if !errors.Is(err, domain.ErrForbiddenMutation) {
		t.Fatalf("want ErrForbiddenMutation, got %v", err)
	}
}

func TestUpdateTask_TerminalJob_Rejected(t *testing.T) {
	terminal := domain.TerminalCompleted
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) {
			return &domain.Job{ID: id, Type: "reminder", ManagedBy: domain.ManagedByOperator, ScheduleType: domain.ScheduleOneshot, RunAt: int64Ptr(1), TerminalState: &terminal}, nil
		},
	}
	svc := newService(jobs, &fakeAuditRepo{})

	_, err := svc.UpdateTask(context.Background(), "job-1", taskmutation.UpdateInput{}, domain.LaneInteractive, "assistant")
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Fatalf("want ErrStateConflict, got %v", err)
	}
}

func TestUpdateTask_NotFound_Propagates(t *testing.T) {
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	svc := newService(jobs, &fakeAuditRepo{})

	_, err := svc.UpdateTask(context.Background(), "missing", taskmutation.UpdateInput{}, domain.LaneInteractive, "assistant")
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("want ErrJobNotFound, got %v", err)
	}
}

func TestUpdateTask_ChangingCadenceRecomputesNextRunAt(t *testing.T) {
	existing := &domain.Job{ID: "job-1", Type: "reminder", ManagedBy: domain.ManagedByOperator, ScheduleType: domain.ScheduleRecurring, CadenceMinutes: intPtr(60)}
	var saved *domain.Job
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) { return existing, nil },
		update: func(_ context.Context, job *domain.Job) (*domain.Job, error) {
			saved = job
			return job, nil
		},
	}
	svc := newService(jobs, &fakeAuditRepo{})

	newCadence := 30
	_, err := svc.UpdateTask(context.Background(), "job-1", taskmutation.UpdateInput{CadenceMinutes: &newCadence}, domain.LaneInteractive, "assistant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.NextRunAt == nil {
		t.Fatal("nextRunAt should be recomputed when cadence changes")
	}
	if *saved.CadenceMinutes != 30 {
		t.Errorf("cadenceMinutes = %d, want 30", *saved.CadenceMinutes)
	}
}

// ---- DeleteTask ----

func TestDeleteTask_CancelsAndAudits(t *testing.T) {
	existing := &domain.Job{ID: "job-1", Type: "reminder", ManagedBy: domain.ManagedByOperator, ScheduleType: domain.ScheduleOneshot, RunAt: int64Ptr(1)}
	var cancelReason string
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) { return existing, nil },
		cancel: func(_ context.Context, id, reason string) error {
			cancelReason = reason
			return nil
		},
	}
	auditRepo := &fakeAuditRepo{}
	svc := newService(jobs, auditRepo)

	result, err := svc.DeleteTask(context.Background(), "job-1", "no longer needed", domain.LaneInteractive, "assistant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != "deleted" {
		t.Errorf("outcome = %q, want deleted", result.Outcome)
	}
	if cancelReason != "no longer needed" {
		t.Errorf("cancel reason = %q", cancelReason)
	}
	if len(auditRepo.recordedTasks) != 1 || auditRepo.recordedTasks[0].Action != domain.AuditDelete {
		t.Fatalf("expected one delete audit row, got %+v", auditRepo.recordedTasks)
	}
}

// ---- RunTaskNow ----

func TestRunTaskNow_SetsNextRunAtToNow(t *testing.T) {
	existing := &domain.Job{ID: "job-1", Type: "reminder", ManagedBy: domain.ManagedByOperator, ScheduleType: domain.ScheduleRecurring, CadenceMinutes: intPtr(60)}
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, id string) (*domain.Job, error) { return existing, nil },
		update: func(_ context.Context, job *domain.Job) (*domain.Job, error) { return job, nil },
	}
	svc := newService(jobs, &fakeAuditRepo{})

	result, err := svc.RunTaskNow(context.Background(), "job-1", domain.LaneOperatorAPI, "control_plane")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != "run_now_scheduled" {
		t.Errorf("outcome = %q, want run_now_scheduled", result.Outcome)
	}
	if result.ScheduledFor == nil {
		t.Fatal("scheduledFor not set")
	}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

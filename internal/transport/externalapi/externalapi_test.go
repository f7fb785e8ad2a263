package externalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ottoassistant/otto/internal/audit"
	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/health"
	"github.com/ottoassistant/otto/internal/repository"
	"github.com/ottoassistant/otto/internal/taskmutation"
)

type fakeJobRepo struct {
	jobs    []*domain.Job
	byID    map[string]*domain.Job
	created *domain.Job
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	r.created = job
	return job, nil
}
func (r *fakeJobRepo) Update(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	return job, nil
}
func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	if j, ok := r.byID[id]; ok {
		return j, nil
	}
	return nil, domain.ErrJobNotFound
}
func (r *fakeJobRepo) List(ctx context.Context, filter repository.ListJobsFilter) ([]*domain.Job, error) {
	return r.jobs, nil
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
func (r *fakeJobRepo) Cancel(ctx context.Context, jobID, reason string) error { return nil }

type fakeAuditRepo struct{}

func (f *fakeAuditRepo) RecordTaskAudit(ctx context.Context, entry *domain.TaskAudit) error {
	return nil
}
func (f *fakeAuditRepo) ListTaskAudit(ctx context.Context, taskID string, limit int) ([]*domain.TaskAudit, error) {
	return nil, nil
}
func (f *fakeAuditRepo) RecordCommandAudit(ctx context.Context, entry *domain.CommandAudit) error {
	return nil
}
func (f *fakeAuditRepo) ListCommandAudit(ctx context.Context, limit int) ([]*domain.CommandAudit, error) {
	return nil, nil
}
func (f *fakeAuditRepo) DeleteTaskAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return 0, nil
}
func (f *fakeAuditRepo) DeleteCommandAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return 0, nil
}

type fakeRunRepo struct {
	runs       []*domain.JobRun
	seenLimit  int
	seenOffset int
}

func (f *fakeRunRepo) Insert(ctx context.Context, run *domain.JobRun) (*domain.JobRun, error) {
	return run, nil
}
func (f *fakeRunRepo) MarkFinished(ctx context.Context, runID string, finishedAt int64, status domain.RunStatus, errCode, errMessage, resultJSON *string) error {
	return nil
}
func (f *fakeRunRepo) GetByID(ctx context.Context, id string) (*domain.JobRun, error) {
	return nil, domain.ErrRunNotFound
}
func (f *fakeRunRepo) ListByJobID(ctx context.Context, jobID string, limit, offset int) ([]*domain.JobRun, error) {
	f.seenLimit = limit
	f.seenOffset = offset
	return f.runs, nil
}
func (f *fakeRunRepo) CountByJobID(ctx context.Context, jobID string) (int, error) {
	return len(f.runs), nil
}
func (f *fakeRunRepo) ListRecentFailed(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error) {
	return nil, nil
}
func (f *fakeRunRepo) ListRecent(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error) {
	return nil, nil
}
func (f *fakeRunRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return 0, nil
}

type fakePinger struct{}

func (fakePinger) PingContext(ctx context.Context) error { return nil }
func (fakePinger) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	*dest.(*string) = "wal"
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDeps(jobs *fakeJobRepo) Deps {
	return newTestDepsWithRuns(jobs, &fakeRunRepo{})
}

func newTestDepsWithRuns(jobs *fakeJobRepo, runs *fakeRunRepo) Deps {
	auditLog := audit.New(&fakeAuditRepo{})
	logger := slog.New(slog.DiscardHandler)
	checker := health.NewChecker(fakePinger{}, logger, prometheus.NewRegistry())
	return Deps{
		Token:  "test-token",
		Health: checker,
		Jobs:   jobs,
		Runs:   runs,
		Audit:  auditLog,
		Tasks:  taskmutation.New(jobs, auditLog),
		Logger: logger,
	}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth_DoesNotRequireAuth(t *testing.T) {
	r := NewRouter(newTestDeps(&fakeJobRepo{}))

	req := httptest.NewRequest(http.MethodGet, "/external/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestListJobs_RequiresAuth(t *testing.T) {
	r := NewRouter(newTestDeps(&fakeJobRepo{}))

	req := httptest.NewRequest(http.MethodGet, "/external/jobs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListJobs_ReturnsProjections(t *testing.T) {
	jobs := &fakeJobRepo{jobs: []*domain.Job{
		{ID: "job-1", Type: "reminder", ManagedBy: domain.ManagedByOperator},
	}}
	r := NewRouter(newTestDeps(jobs))

	rec := doRequest(t, r, http.MethodGet, "/external/jobs", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	list, ok := body["jobs"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected one job in response, got %v", body)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	r := NewRouter(newTestDeps(&fakeJobRepo{byID: map[string]*domain.Job{}}))

	rec := doRequest(t, r, http.MethodGet, "/external/jobs/missing", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateJob_RejectsInvalidScheduleType(t *testing.T) {
	r := NewRouter(newTestDeps(&fakeJobRepo{}))

	rec := doRequest(t, r, http.MethodPost, "/external/jobs", map[string]any{
		"type":         "reminder",
		"scheduleType": "whenever",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateJob_Succeeds(t *testing.T) {
	jobs := &fakeJobRepo{}
	r := NewRouter(newTestDeps(jobs))

	rec := doRequest(t, r, http.MethodPost, "/external/jobs", map[string]any{
		"type":           "reminder",
		"scheduleType":   "recurring",
		"cadenceMinutes": 30,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body = %s", rec.Code, rec.Body.String())
	}
	if jobs.created == nil {
		t.Fatal("expected job to be created")
	}
}

func TestJobRuns_PassesLimitAndOffsetThrough(t *testing.T) {
	jobs := &fakeJobRepo{byID: map[string]*domain.Job{"job-1": {ID: "job-1"}}}
	runs := &fakeRunRepo{runs: []*domain.JobRun{{ID: "run-1", JobID: "job-1"}}}
	r := NewRouter(newTestDepsWithRuns(jobs, runs))

	rec := doRequest(t, r, http.MethodGet, "/external/jobs/job-1/runs?limit=5&offset=10", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if runs.seenLimit != 5 || runs.seenOffset != 10 {
		t.Fatalf("ListByJobID called with limit=%d offset=%d, want 5/10", runs.seenLimit, runs.seenOffset)
	}
}

func TestJobRuns_DefaultsOffsetToZero(t *testing.T) {
	jobs := &fakeJobRepo{byID: map[string]*domain.Job{"job-1": {ID: "job-1"}}}
	runs := &fakeRunRepo{}
	r := NewRouter(newTestDepsWithRuns(jobs, runs))

	rec := doRequest(t, r, http.MethodGet, "/external/jobs/job-1/runs", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if runs.seenOffset != 0 {
		t.Fatalf("seenOffset = %d, want 0", runs.seenOffset)
	}
}

func TestDeleteJob_SystemManagedIsForbidden(t *testing.T) {
	jobs := &fakeJobRepo{byID: map[string]*domain.Job{
		"heartbeat-job": {ID: "heartbeat-job", Type: "heartbeat", ManagedBy: domain.ManagedBySystem},
	}}
	r := NewRouter(newTestDeps(jobs))

	rec := doRequest(t, r, http.MethodDelete, "/external/jobs/heartbeat-job", nil)

	if rec.Code != http.StatusForbidden && rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want a rejection status, body = %s", rec.Code, rec.Body.String())
	}
}

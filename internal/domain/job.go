package domain

// ScheduleType selects how a Job's firing time is determined.
type ScheduleType string

const (
	ScheduleOneshot   ScheduleType = "oneshot"
	ScheduleRecurring ScheduleType = "recurring"
)

// JobStatus tracks whether a job is idle, leased by a worker, or paused
// (excluded from the due scan entirely).
type JobStatus string

const (
	JobIdle    JobStatus = "idle"
	JobRunning JobStatus = "running"
	JobPaused  JobStatus = "paused"
)

// TerminalState marks a job that will never fire again. A non-empty
// TerminalState implies NextRunAt and LockToken are both unset.
type TerminalState string

const (
	TerminalCompleted TerminalState = "completed"
	TerminalExpired   TerminalState = "expired"
	TerminalCancelled TerminalState = "cancelled"
)

// ManagedBy distinguishes system-reserved jobs (immutable via the control
// planes) from operator-created ones.
type ManagedBy string

const (
	ManagedBySystem   ManagedBy = "system"
	ManagedByOperator ManagedBy = "operator"
)

// SystemReservedTypes is the compile-time constant set that locks a job
// type's type and managedBy to the scheduler. All three jobs are seeded by
// the scheduler at startup if absent.
var SystemReservedTypes = map[string]struct{}{
	"heartbeat":          {},
	"watchdog_failures":  {},
	"retention_compact":  {},
}

func IsSystemReservedType(jobType string) bool {
	_, ok := SystemReservedTypes[jobType]
	return ok
}

// Job is the canonical scheduled unit of work. The store is its sole
// owner; every other component holds a copy returned by a repository
// call, never a shared pointer into live state.
type Job struct {
	ID             string        `db:"id" json:"id"`
	Type           string        `db:"type" json:"type"`
	ScheduleType   ScheduleType  `db:"schedule_type" json:"scheduleType"`
	Status         JobStatus     `db:"status" json:"status"`
	ProfileID      *string       `db:"profile_id" json:"profileId"`
	ModelRef       *string       `db:"model_ref" json:"modelRef"`
	Payload        *string       `db:"payload" json:"payload"`
	RunAt          *int64        `db:"run_at" json:"runAt"`
	CadenceMinutes *int          `db:"cadence_minutes" json:"cadenceMinutes"`
	LastRunAt      *int64        `db:"last_run_at" json:"lastRunAt"`
	NextRunAt      *int64        `db:"next_run_at" json:"nextRunAt"`
	TerminalState  *TerminalState `db:"terminal_state" json:"terminalState"`
	TerminalReason *string       `db:"terminal_reason" json:"terminalReason"`
	LockToken      *string       `db:"lock_token" json:"-"`
	LockExpiresAt  *int64        `db:"lock_expires_at" json:"-"`
	CreatedAt      int64         `db:"created_at" json:"createdAt"`
	UpdatedAt      int64         `db:"updated_at" json:"updatedAt"`
	ManagedBy      ManagedBy     `db:"managed_by" json:"managedBy"`
}

// IsMutable reports whether a control plane may accept create/update/
// delete/run-now calls against this job.
func (j *Job) IsMutable() bool {
	return j.ManagedBy != ManagedBySystem && !IsSystemReservedType(j.Type)
}

// IsTerminal reports whether the job will never fire again.
func (j *Job) IsTerminal() bool {
	return j.TerminalState != nil
}

// RunStatus is the outcome of one execution attempt.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunSkipped RunStatus = "skipped"
)

// JobRun is one append-only execution record for a Job.
type JobRun struct {
	ID           string     `db:"id" json:"id"`
	JobID        string     `db:"job_id" json:"jobId"`
	ScheduledFor *int64     `db:"scheduled_for" json:"scheduledFor"`
	StartedAt    int64      `db:"started_at" json:"startedAt"`
	FinishedAt   *int64     `db:"finished_at" json:"finishedAt"`
	Status       RunStatus  `db:"status" json:"status"`
	ErrorCode    *string    `db:"error_code" json:"errorCode"`
	ErrorMessage *string    `db:"error_message" json:"errorMessage"`
	ResultJSON   *string    `db:"result_json" json:"resultJson"`
	CreatedAt    int64      `db:"created_at" json:"createdAt"`
}

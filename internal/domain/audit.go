package domain

// Lane identifies the caller category that produced a mutation or
// command, per the GLOSSARY. Scheduled writes never pass through the
// task mutation service's lane check — they use the repository
// façades directly — but are still recorded with lane=scheduled where
// applicable so the audit trail stays complete.
type Lane string

const (
	LaneInteractive Lane = "interactive"
	LaneOperatorAPI Lane = "operator-api"
	LaneScheduled   Lane = "scheduled"
)

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// TaskAudit is an append-only record of one task (job) mutation.
type TaskAudit struct {
	ID           string      `db:"id" json:"id"`
	TaskID       string      `db:"task_id" json:"taskId"`
	Action       AuditAction `db:"action" json:"action"`
	Lane         Lane        `db:"lane" json:"lane"`
	Actor        string      `db:"actor" json:"actor"`
	BeforeJSON   *string     `db:"before_json" json:"beforeJson"`
	AfterJSON    *string     `db:"after_json" json:"afterJson"`
	MetadataJSON *string     `db:"metadata_json" json:"metadataJson"`
	CreatedAt    int64       `db:"created_at" json:"createdAt"`
}

type CommandStatus string

const (
	CommandSuccess CommandStatus = "success"
	CommandFailed  CommandStatus = "failed"
	CommandDenied  CommandStatus = "denied"
)

// CommandAudit is an append-only record of one command-execution
// attempt against a control plane (e.g. restart, set-profile).
type CommandAudit struct {
	ID           string        `db:"id" json:"id"`
	Command      string        `db:"command" json:"command"`
	Lane         Lane          `db:"lane" json:"lane"`
	Status       CommandStatus `db:"status" json:"status"`
	ErrorMessage *string       `db:"error_message" json:"errorMessage"`
	MetadataJSON *string       `db:"metadata_json" json:"metadataJson"`
	CreatedAt    int64         `db:"created_at" json:"createdAt"`
}

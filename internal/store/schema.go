package store

// schema is applied with CREATE TABLE IF NOT EXISTS on every startup, the
// way a single embedded file has no separate migration runner to call
// first. Column order matches the domain struct field order so scans
// stay easy to eyeball against internal/domain.
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	type            TEXT NOT NULL,
	schedule_type   TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'idle',
	profile_id      TEXT,
	model_ref       TEXT,
	payload         TEXT,
	run_at          INTEGER,
	cadence_minutes INTEGER,
	last_run_at     INTEGER,
	next_run_at     INTEGER,
	terminal_state  TEXT,
	terminal_reason TEXT,
	lock_token      TEXT,
	lock_expires_at INTEGER,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL,
	managed_by      TEXT NOT NULL DEFAULT 'operator'
);
CREATE INDEX IF NOT EXISTS idx_jobs_claim ON jobs(status, next_run_at);
CREATE INDEX IF NOT EXISTS idx_jobs_type ON jobs(type);

CREATE TABLE IF NOT EXISTS job_runs (
	id            TEXT PRIMARY KEY,
	job_id        TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	scheduled_for INTEGER,
	started_at    INTEGER NOT NULL,
	finished_at   INTEGER,
	status        TEXT NOT NULL,
	error_code    TEXT,
	error_message TEXT,
	result_json   TEXT,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_runs_job ON job_runs(job_id, started_at DESC);
CREATE INDEX IF NOT EXISTS idx_job_runs_created ON job_runs(created_at);

CREATE TABLE IF NOT EXISTS outbound_messages (
	id              TEXT PRIMARY KEY,
	chat_id         INTEGER NOT NULL,
	content         TEXT NOT NULL,
	priority        TEXT NOT NULL DEFAULT 'normal',
	status          TEXT NOT NULL DEFAULT 'queued',
	dedupe_key      TEXT,
	attempt_count   INTEGER NOT NULL DEFAULT 0,
	next_attempt_at INTEGER,
	sent_at         INTEGER,
	failed_at       INTEGER,
	error_message   TEXT,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_outbound_dedupe ON outbound_messages(dedupe_key)
	WHERE dedupe_key IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_outbound_due ON outbound_messages(status, next_attempt_at);

CREATE TABLE IF NOT EXISTS task_audit (
	id            TEXT PRIMARY KEY,
	task_id       TEXT NOT NULL,
	action        TEXT NOT NULL,
	lane          TEXT NOT NULL,
	actor         TEXT NOT NULL,
	before_json   TEXT,
	after_json    TEXT,
	metadata_json TEXT,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_audit_task ON task_audit(task_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_task_audit_created ON task_audit(created_at);

CREATE TABLE IF NOT EXISTS command_audit (
	id            TEXT PRIMARY KEY,
	command       TEXT NOT NULL,
	lane          TEXT NOT NULL,
	status        TEXT NOT NULL,
	error_message TEXT,
	metadata_json TEXT,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_command_audit_created ON command_audit(created_at);

CREATE TABLE IF NOT EXISTS user_profile (
	id                        TEXT PRIMARY KEY,
	timezone                  TEXT NOT NULL DEFAULT 'UTC',
	quiet_hours_start         TEXT NOT NULL DEFAULT '22:00',
	quiet_hours_end           TEXT NOT NULL DEFAULT '07:00',
	quiet_mode                TEXT NOT NULL DEFAULT 'critical_only',
	mute_until                INTEGER,
	heartbeat_time_1          TEXT NOT NULL DEFAULT '08:00',
	heartbeat_time_2          TEXT NOT NULL DEFAULT '13:00',
	heartbeat_time_3          TEXT NOT NULL DEFAULT '19:00',
	heartbeat_cadence_min     INTEGER NOT NULL DEFAULT 60,
	heartbeat_only_if_signal  INTEGER NOT NULL DEFAULT 0,
	onboarded_at              INTEGER,
	last_digest_at            INTEGER,
	updated_at                INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS session_bindings (
	session_id  TEXT PRIMARY KEY,
	chat_id     INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
`

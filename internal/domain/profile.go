package domain

// QuietMode controls whether notifications outside quiet hours are
// suppressed entirely or reduced to critical-priority only.
type QuietMode string

const (
	QuietModeCriticalOnly QuietMode = "critical_only"
	QuietModeOff          QuietMode = "off"
)

// UserProfile is the single-row settings singleton shared by the
// scheduler (heartbeat cadence), the agent loop, and both control
// planes' settings endpoints.
type UserProfile struct {
	ID                    string    `db:"id" json:"id"`
	Timezone              string    `db:"timezone" json:"timezone"`
	QuietHoursStart       string    `db:"quiet_hours_start" json:"quietHoursStart"`
	QuietHoursEnd         string    `db:"quiet_hours_end" json:"quietHoursEnd"`
	QuietMode             QuietMode `db:"quiet_mode" json:"quietMode"`
	MuteUntil             *int64    `db:"mute_until" json:"muteUntil"`
	HeartbeatTime1        string    `db:"heartbeat_time_1" json:"heartbeatTime1"`
	HeartbeatTime2        string    `db:"heartbeat_time_2" json:"heartbeatTime2"`
	HeartbeatTime3        string    `db:"heartbeat_time_3" json:"heartbeatTime3"`
	HeartbeatCadenceMin   int       `db:"heartbeat_cadence_min" json:"heartbeatCadenceMinutes"`
	HeartbeatOnlyIfSignal bool      `db:"heartbeat_only_if_signal" json:"heartbeatOnlyIfSignal"`
	OnboardedAt           *int64    `db:"onboarded_at" json:"onboardedAt"`
	LastDigestAt          *int64    `db:"last_digest_at" json:"lastDigestAt"`
	UpdatedAt             int64     `db:"updated_at" json:"updatedAt"`
}

// SingletonProfileID is the fixed primary key of the one UserProfile row.
const SingletonProfileID = "default"

package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config is parsed once at process start from the environment. A single
// Config drives both cmd/otto and cmd/ottoseed.
type Config struct {
	Env string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`

	HomeDir  string `env:"OTTO_HOME" envDefault:"./otto-home" validate:"required"`
	DBPath   string `env:"OTTO_DB_PATH" envDefault:"" validate:"-"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`

	InternalAPIHost string `env:"OTTO_INTERNAL_API_HOST" envDefault:"127.0.0.1" validate:"required,oneof=127.0.0.1 localhost"`
	InternalAPIPort int    `env:"OTTO_INTERNAL_API_PORT" envDefault:"4180" validate:"min=1,max=65535"`
	ExternalAPIHost string `env:"OTTO_EXTERNAL_API_HOST" envDefault:"0.0.0.0" validate:"required"`
	ExternalAPIPort int    `env:"OTTO_EXTERNAL_API_PORT" envDefault:"4190" validate:"min=1,max=65535"`
	MetricsPort     string `env:"METRICS_PORT" envDefault:"9090" validate:"required"`

	SchedulerTickIntervalSec int `env:"SCHEDULER_TICK_INTERVAL_SEC" envDefault:"5" validate:"min=1,max=300"`
	SchedulerWorkerCount     int `env:"SCHEDULER_WORKER_COUNT" envDefault:"4" validate:"min=1,max=64"`
	SchedulerLeaseSeconds    int `env:"SCHEDULER_LEASE_SECONDS" envDefault:"120" validate:"min=5,max=3600"`
	SchedulerClaimBatchSize  int `env:"SCHEDULER_CLAIM_BATCH_SIZE" envDefault:"20" validate:"min=1,max=500"`

	OutboundPollIntervalSec int `env:"OUTBOUND_POLL_INTERVAL_SEC" envDefault:"2" validate:"min=1,max=60"`
	OutboundBatchSize       int `env:"OUTBOUND_BATCH_SIZE" envDefault:"20" validate:"min=1,max=500"`
	OutboundMaxAttempts     int `env:"OUTBOUND_MAX_ATTEMPTS" envDefault:"8" validate:"min=1,max=50"`

	RunRetentionDays     int `env:"RUN_RETENTION_DAYS" envDefault:"90" validate:"min=1"`
	CommandAuditRetentionDays int `env:"COMMAND_AUDIT_RETENTION_DAYS" envDefault:"90" validate:"min=1"`
	TaskAuditRetentionDays    int `env:"TASK_AUDIT_RETENTION_DAYS" envDefault:"365" validate:"min=1"`
	OutboundRetentionDays     int `env:"OUTBOUND_RETENTION_DAYS" envDefault:"30" validate:"min=1"`

	// OwnerChatID is the chat system-originated notifications (heartbeat,
	// watchdog alerts) are delivered to. Telegram ingestion is out of
	// scope, so this is the operator's one-time manual configuration of
	// "where do Otto's own messages go" rather than something derived
	// from an inbound conversation.
	OwnerChatID int64 `env:"OTTO_OWNER_CHAT_ID" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = cfg.HomeDir + "/otto.db"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// InternalAPIAddr is the listen address for the loopback control plane.
func (c *Config) InternalAPIAddr() string {
	return fmt.Sprintf("%s:%d", c.InternalAPIHost, c.InternalAPIPort)
}

// ExternalAPIAddr is the listen address for the LAN-facing control plane.
func (c *Config) ExternalAPIAddr() string {
	return fmt.Sprintf("%s:%d", c.ExternalAPIHost, c.ExternalAPIPort)
}

// SlogLevel converts the LOG_LEVEL string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

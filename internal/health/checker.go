package health

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by the store's *sqlx.DB. GetContext is used to
// read SQLite's journal mode alongside reachability, since the store
// opens the database in WAL mode and a connection that silently lost
// that setting (a corrupt database file, a stale connection to a
// restored backup) is a readiness concern even while pings succeed.
type Pinger interface {
	PingContext(ctx context.Context) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that all dependencies are reachable.
type Checker struct {
	db     Pinger
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

func NewChecker(db Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "otto",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		db:     db,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings the store, reports its journal mode, and surfaces
// per-check status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}

	if err := c.db.PingContext(checkCtx); err != nil {
		c.logger.Warn("sqlite health check failed", "error", err)
		result.Status = "down"
		result.Checks["sqlite"] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues("sqlite").Set(0)
		return result
	}

	check := CheckResult{Status: "up"}
	var journalMode string
	if err := c.db.GetContext(checkCtx, &journalMode, `PRAGMA journal_mode`); err == nil {
		check.Detail = "journal_mode=" + journalMode
		if !strings.EqualFold(journalMode, "wal") {
			c.logger.Warn("sqlite not running in WAL mode", "journal_mode", journalMode)
		}
	}
	result.Checks["sqlite"] = check
	c.gauge.WithLabelValues("sqlite").Set(1)

	return result
}

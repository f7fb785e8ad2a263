// Command ottoseed seeds a fresh store with the system-reserved jobs and
// a default user profile, for local development and integration tests
// where otto itself hasn't run yet.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ottoassistant/otto/internal/config"
	"github.com/ottoassistant/otto/internal/infrastructure/sqlite"
	"github.com/ottoassistant/otto/internal/logx"
	"github.com/ottoassistant/otto/internal/scheduler"
	"github.com/ottoassistant/otto/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logx.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := os.MkdirAll(cfg.HomeDir, 0o700); err != nil {
		logger.Error("create home dir", "error", err)
		os.Exit(1)
	}

	db, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	jobRepo := sqlite.NewJobRepository(db)
	runRepo := sqlite.NewJobRunRepository(db)
	registry := scheduler.NewRegistry()
	sched := scheduler.New(jobRepo, runRepo, registry, logger, scheduler.Config{})

	if err := sched.SeedSystemJobs(ctx, map[string]int{
		"heartbeat":         60,
		"watchdog_failures": 15,
		"retention_compact": 1440,
	}); err != nil {
		logger.Error("seed system jobs", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete", "db_path", cfg.DBPath)
}

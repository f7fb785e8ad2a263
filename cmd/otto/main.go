// Command otto is the long-running daemon: it opens the store, starts
// the scheduler, the outbound delivery worker, and both HTTP control
// planes, and serves Prometheus metrics, all in one process (single
// writer, single node).
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ottoassistant/otto/internal/audit"
	"github.com/ottoassistant/otto/internal/config"
	"github.com/ottoassistant/otto/internal/health"
	"github.com/ottoassistant/otto/internal/infrastructure/sqlite"
	"github.com/ottoassistant/otto/internal/jobhandlers"
	"github.com/ottoassistant/otto/internal/logx"
	"github.com/ottoassistant/otto/internal/metrics"
	"github.com/ottoassistant/otto/internal/outbound"
	"github.com/ottoassistant/otto/internal/restartctl"
	"github.com/ottoassistant/otto/internal/scheduler"
	"github.com/ottoassistant/otto/internal/secrets"
	"github.com/ottoassistant/otto/internal/store"
	"github.com/ottoassistant/otto/internal/taskmutation"
	"github.com/ottoassistant/otto/internal/transport/externalapi"
	"github.com/ottoassistant/otto/internal/transport/internalapi"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logx.New(cfg.Env, cfg.SlogLevel(), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	logger.Info("store opened", "path", cfg.DBPath)

	metrics.Register()
	metrics.ProcessStartTime.Set(float64(time.Now().Unix()))
	checker := health.NewChecker(db.DB, logger, prometheus.DefaultRegisterer)

	jobRepo := sqlite.NewJobRepository(db)
	runRepo := sqlite.NewJobRunRepository(db)
	outboundRepo := sqlite.NewOutboundRepository(db)
	profileRepo := sqlite.NewProfileRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	sessionRepo := sqlite.NewSessionBindingRepository(db)

	auditLog := audit.New(auditRepo)
	tasks := taskmutation.New(jobRepo, auditLog)

	ownerChat := func() (int64, bool) {
		if cfg.OwnerChatID == 0 {
			return 0, false
		}
		return cfg.OwnerChatID, true
	}

	registry := scheduler.NewRegistry()
	registry.Register("heartbeat", jobhandlers.NewHeartbeat(profileRepo, runRepo, outboundRepo, ownerChat))
	registry.Register("watchdog_failures", jobhandlers.NewWatchdogFailures(jobRepo, runRepo, outboundRepo, ownerChat))
	registry.Register("retention_compact", jobhandlers.NewRetentionCompact(runRepo, auditRepo, outboundRepo, jobhandlers.RetentionConfig{
		RunRetention:          time.Duration(cfg.RunRetentionDays) * 24 * time.Hour,
		CommandAuditRetention: time.Duration(cfg.CommandAuditRetentionDays) * 24 * time.Hour,
		TaskAuditRetention:    time.Duration(cfg.TaskAuditRetentionDays) * 24 * time.Hour,
		OutboundRetention:     time.Duration(cfg.OutboundRetentionDays) * 24 * time.Hour,
	}))

	sched := scheduler.New(jobRepo, runRepo, registry, logger, scheduler.Config{
		TickInterval: time.Duration(cfg.SchedulerTickIntervalSec) * time.Second,
		LeaseMs:      int64(cfg.SchedulerLeaseSeconds) * 1000,
		BatchLimit:   cfg.SchedulerClaimBatchSize,
		WorkerCount:  cfg.SchedulerWorkerCount,
	})
	if err := sched.SeedSystemJobs(ctx, map[string]int{
		"heartbeat":         60,
		"watchdog_failures": 15,
		"retention_compact": 1440,
	}); err != nil {
		logger.Error("seed system jobs", "error", err)
		os.Exit(1)
	}
	go sched.Run(ctx)

	deliveryWorker := outbound.NewWorker(outboundRepo, outbound.NewTelegramTransport(os.Getenv("OTTO_TELEGRAM_BOT_TOKEN")), logger, outbound.Config{
		PollInterval: time.Duration(cfg.OutboundPollIntervalSec) * time.Second,
		BatchSize:    cfg.OutboundBatchSize,
		Backoff: outbound.BackoffConfig{
			Base:        time.Second,
			Cap:         5 * time.Minute,
			MaxAttempts: cfg.OutboundMaxAttempts,
		},
	})
	go deliveryWorker.Run(ctx)

	internalToken, err := secrets.LoadOrMint(filepath.Join(cfg.HomeDir, "secrets", "internal-api.token"))
	if err != nil {
		logger.Error("load internal api token", "error", err)
		os.Exit(1)
	}
	externalToken, err := secrets.LoadOrMint(filepath.Join(cfg.HomeDir, "secrets", "external-api.token"))
	if err != nil {
		logger.Error("load external api token", "error", err)
		os.Exit(1)
	}

	internalSrv := internalapi.NewServer(cfg.InternalAPIAddr(), internalapi.NewRouter(internalapi.Deps{
		Token:    internalToken,
		Outbound: outboundRepo,
		Sessions: sessionRepo,
		Jobs:     jobRepo,
		Runs:     runRepo,
		Profiles: profileRepo,
		Tasks:    tasks,
		Audit:    auditLog,
		Logger:   logger,
	}))
	go serve(ctx, logger, "internal control plane", internalSrv)

	startedAt := time.Now()
	externalSrv := externalapi.NewServer(cfg.ExternalAPIAddr(), externalapi.NewRouter(externalapi.Deps{
		Token:     externalToken,
		Health:    checker,
		Runtime:   restartctl.RuntimeFunc(func(context.Context) error { return nil }),
		Profiles:  profileRepo,
		Catalog:   nil,
		Jobs:      jobRepo,
		Runs:      runRepo,
		Audit:     auditLog,
		Tasks:     tasks,
		Logger:    logger,
		Version:   version,
		StartedAt: startedAt,
	}))
	go serve(ctx, logger, "external control plane", externalSrv)

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)
	go serve(ctx, logger, "metrics server", metricsSrv)

	<-ctx.Done()
	stop()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{internalSrv, externalSrv, metricsSrv} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}
	logger.Info("shut down complete")
}

func serve(ctx context.Context, logger interface {
	Info(string, ...any)
	Error(string, ...any)
}, name string, srv *http.Server) {
	logger.Info(name+" started", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(name, "error", err)
	}
}

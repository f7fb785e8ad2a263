package jobhandlers

import (
	"context"
	"strings"
	"testing"

	"github.com/ottoassistant/otto/internal/domain"
)

type fakeProfileRepo struct {
	profile *domain.UserProfile
}

func (f *fakeProfileRepo) Get(ctx context.Context) (*domain.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	f.profile = profile
	return profile, nil
}

type fakeRunRepo struct {
	recentFailed []*domain.JobRun
	deletedSince int64
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
	return nil, nil
}
func (f *fakeRunRepo) CountByJobID(ctx context.Context, jobID string) (int, error) { return 0, nil }
func (f *fakeRunRepo) ListRecentFailed(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error) {
	return f.recentFailed, nil
}
func (f *fakeRunRepo) ListRecent(ctx context.Context, since int64, limit int) ([]*domain.JobRun, error) {
	return nil, nil
}
func (f *fakeRunRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	f.deletedSince = cutoff
	return 3, nil
}

type fakeOutboundQueue struct {
	enqueued []*domain.OutboundMessage
}

func (f *fakeOutboundQueue) EnqueueOrIgnoreDedupe(ctx context.Context, msg *domain.OutboundMessage) (*domain.OutboundMessage, domain.EnqueueOutcome, error) {
	f.enqueued = append(f.enqueued, msg)
	return msg, domain.EnqueueOutcomeEnqueued, nil
}
func (f *fakeOutboundQueue) Enqueue(ctx context.Context, msg *domain.OutboundMessage) (*domain.OutboundMessage, error) {
	f.enqueued = append(f.enqueued, msg)
	return msg, nil
}
func (f *fakeOutboundQueue) GetByID(ctx context.Context, id string) (*domain.OutboundMessage, error) {
	return nil, domain.ErrMessageNotFound
}
func (f *fakeOutboundQueue) ListDue(ctx context.Context, now int64, limit int) ([]*domain.OutboundMessage, error) {
	return nil, nil
}
func (f *fakeOutboundQueue) MarkSent(ctx context.Context, id string, sentAt int64) error { return nil }
func (f *fakeOutboundQueue) MarkRetry(ctx context.Context, id string, nextAttemptAt int64, attemptCount int, errMessage string) error {
	return nil
}
func (f *fakeOutboundQueue) MarkFailed(ctx context.Context, id string, failedAt int64, errMessage string) error {
	return nil
}
func (f *fakeOutboundQueue) Cancel(ctx context.Context, id string) error { return nil }
func (f *fakeOutboundQueue) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return 0, nil
}

type fakeAuditLedger struct {
	deletedTaskCutoff, deletedCommandCutoff int64
}

func (f *fakeAuditLedger) RecordTaskAudit(ctx context.Context, entry *domain.TaskAudit) error {
	return nil
}
func (f *fakeAuditLedger) ListTaskAudit(ctx context.Context, taskID string, limit int) ([]*domain.TaskAudit, error) {
	return nil, nil
}
func (f *fakeAuditLedger) RecordCommandAudit(ctx context.Context, entry *domain.CommandAudit) error {
	return nil
}
func (f *fakeAuditLedger) ListCommandAudit(ctx context.Context, limit int) ([]*domain.CommandAudit, error) {
	return nil, nil
}
func (f *fakeAuditLedger) DeleteTaskAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	f.deletedTaskCutoff = cutoff
	return 1, nil
}
func (f *fakeAuditLedger) DeleteCommandAuditOlderThan(ctx context.Context, cutoff int64) (int, error) {
	f.deletedCommandCutoff = cutoff
	return 2, nil
}

func ownerChat(id int64, ok bool) HeartbeatChatID {
	return func() (int64, bool) { return id, ok }
}

func TestHeartbeat_SkipsWhenMuted(t *testing.T) {
	muteUntil := int64(9999999999999)
	profiles := &fakeProfileRepo{profile: &domain.UserProfile{MuteUntil: &muteUntil, HeartbeatCadenceMin: 60}}
	runs := &fakeRunRepo{}
	outbound := &fakeOutboundQueue{}

	h := NewHeartbeat(profiles, runs, outbound, ownerChat(1, true))
	result, err := h(context.Background(), &domain.Job{ID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSkipped {
		t.Fatalf("status = %v, want skipped", result.Status)
	}
	if len(outbound.enqueued) != 0 {
		t.Fatalf("expected no message enqueued while muted")
	}
}

func TestHeartbeat_SkipsWhenOnlyIfSignalAndNoFailures(t *testing.T) {
	profiles := &fakeProfileRepo{profile: &domain.UserProfile{HeartbeatCadenceMin: 60, HeartbeatOnlyIfSignal: true}}
	runs := &fakeRunRepo{}
	outbound := &fakeOutboundQueue{}

	h := NewHeartbeat(profiles, runs, outbound, ownerChat(1, true))
	result, err := h(context.Background(), &domain.Job{ID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSkipped {
		t.Fatalf("status = %v, want skipped", result.Status)
	}
}

func TestHeartbeat_EnqueuesWhenSignalPresent(t *testing.T) {
	profiles := &fakeProfileRepo{profile: &domain.UserProfile{HeartbeatCadenceMin: 60, HeartbeatOnlyIfSignal: true}}
	runs := &fakeRunRepo{recentFailed: []*domain.JobRun{{ID: "run-1"}}}
	outbound := &fakeOutboundQueue{}

	h := NewHeartbeat(profiles, runs, outbound, ownerChat(42, true))
	result, err := h(context.Background(), &domain.Job{ID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}
	if len(outbound.enqueued) != 1 {
		t.Fatalf("expected one message enqueued, got %d", len(outbound.enqueued))
	}
	if outbound.enqueued[0].ChatID != 42 {
		t.Fatalf("chat id = %d, want 42", outbound.enqueued[0].ChatID)
	}
}

func TestHeartbeat_NoOwnerChatReportsErrorButSucceeds(t *testing.T) {
	profiles := &fakeProfileRepo{profile: &domain.UserProfile{HeartbeatCadenceMin: 60}}
	runs := &fakeRunRepo{}
	outbound := &fakeOutboundQueue{}

	h := NewHeartbeat(profiles, runs, outbound, ownerChat(0, false))
	result, err := h(context.Background(), &domain.Job{ID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}
	if result.ErrorCode == nil || *result.ErrorCode != "no_owner_chat" {
		t.Fatalf("expected no_owner_chat error code, got %v", result.ErrorCode)
	}
}

func TestWatchdogFailures_NoFailuresSkipsNotification(t *testing.T) {
	runs := &fakeRunRepo{}
	outbound := &fakeOutboundQueue{}

	h := NewWatchdogFailures(nil, runs, outbound, ownerChat(1, true))
	result, err := h(context.Background(), &domain.Job{ID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}
	if len(outbound.enqueued) != 0 {
		t.Fatalf("expected no notification when there are no failures")
	}
}

func TestWatchdogFailures_NotifiesOnFailures(t *testing.T) {
	runs := &fakeRunRepo{recentFailed: []*domain.JobRun{{ID: "run-1"}, {ID: "run-2"}}}
	outbound := &fakeOutboundQueue{}

	h := NewWatchdogFailures(nil, runs, outbound, ownerChat(7, true))
	result, err := h(context.Background(), &domain.Job{ID: "job-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}
	if len(outbound.enqueued) != 1 {
		t.Fatalf("expected one notification, got %d", len(outbound.enqueued))
	}
	if outbound.enqueued[0].Priority != domain.PriorityHigh {
		t.Fatalf("priority = %v, want high", outbound.enqueued[0].Priority)
	}
}

func TestRetentionCompact_DeletesFromEveryLedger(t *testing.T) {
	runs := &fakeRunRepo{}
	auditLedger := &fakeAuditLedger{}
	outbound := &fakeOutboundQueue{}
	cfg := RetentionConfig{
		RunRetention:          0,
		CommandAuditRetention: 0,
		TaskAuditRetention:    0,
		OutboundRetention:     0,
	}

	h := NewRetentionCompact(runs, auditLedger, outbound, cfg)
	result, err := h(context.Background(), &domain.Job{ID: "retention_compact"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}
	if result.ResultJSON == nil {
		t.Fatal("expected result json describing deletion counts")
	}
	if runs.deletedSince == 0 || auditLedger.deletedTaskCutoff == 0 || auditLedger.deletedCommandCutoff == 0 {
		t.Fatalf("expected runs, task audit, and command audit to be compacted, got cutoffs %d/%d/%d",
			runs.deletedSince, auditLedger.deletedTaskCutoff, auditLedger.deletedCommandCutoff)
	}
	if !strings.Contains(*result.ResultJSON, "outboundMessagesDeleted") {
		t.Fatalf("expected outbound deletion count in result, got %s", *result.ResultJSON)
	}
}

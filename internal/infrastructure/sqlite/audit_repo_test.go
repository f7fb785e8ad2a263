package sqlite

import (
	"context"
	"testing"

	"github.com/ottoassistant/otto/internal/domain"
)

func TestAuditRepository_TaskAudit_RecordAndList(t *testing.T) {
	repo := NewAuditRepository(openTestStore(t))
	ctx := context.Background()

	entry := &domain.TaskAudit{
		TaskID: "job-1", Action: domain.AuditCreate, Lane: domain.LaneOperatorAPI,
		Actor: "operator", CreatedAt: 100,
	}
	if err := repo.RecordTaskAudit(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	entries, err := repo.ListTaskAudit(ctx, "job-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != domain.AuditCreate {
		t.Fatalf("expected one create entry, got %+v", entries)
	}
}

func TestAuditRepository_TaskAudit_DeleteOlderThan(t *testing.T) {
	repo := NewAuditRepository(openTestStore(t))
	ctx := context.Background()

	old := &domain.TaskAudit{TaskID: "job-1", Action: domain.AuditCreate, Lane: domain.LaneOperatorAPI, Actor: "operator", CreatedAt: 1}
	recent := &domain.TaskAudit{TaskID: "job-1", Action: domain.AuditUpdate, Lane: domain.LaneOperatorAPI, Actor: "operator", CreatedAt: 5000}
	if err := repo.RecordTaskAudit(ctx, old); err != nil {
		t.Fatalf("record old: %v", err)
	}
	if err := repo.RecordTaskAudit(ctx, recent); err != nil {
		t.Fatalf("record recent: %v", err)
	}

	n, err := repo.DeleteTaskAuditOlderThan(ctx, 1000)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted = %d, want 1", n)
	}

	entries, err := repo.ListTaskAudit(ctx, "job-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != recent.ID {
		t.Fatalf("expected only the recent entry to survive, got %+v", entries)
	}
}

func TestAuditRepository_CommandAudit_RecordAndList(t *testing.T) {
	repo := NewAuditRepository(openTestStore(t))
	ctx := context.Background()

	entry := &domain.CommandAudit{Command: "restart", Lane: domain.LaneOperatorAPI, Status: domain.CommandSuccess, CreatedAt: 100}
	if err := repo.RecordCommandAudit(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := repo.ListCommandAudit(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Command != "restart" {
		t.Fatalf("expected one restart entry, got %+v", entries)
	}
}

func TestAuditRepository_CommandAudit_DeleteOlderThan(t *testing.T) {
	repo := NewAuditRepository(openTestStore(t))
	ctx := context.Background()

	old := &domain.CommandAudit{Command: "restart", Lane: domain.LaneOperatorAPI, Status: domain.CommandSuccess, CreatedAt: 1}
	if err := repo.RecordCommandAudit(ctx, old); err != nil {
		t.Fatalf("record: %v", err)
	}

	n, err := repo.DeleteCommandAuditOlderThan(ctx, 1000)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted = %d, want 1", n)
	}
}

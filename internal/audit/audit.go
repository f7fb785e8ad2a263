// Package audit provides the append-only write helpers task mutation
// and both control planes call on every state-changing operation.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ottoassistant/otto/internal/domain"
	"github.com/ottoassistant/otto/internal/idgen"
	"github.com/ottoassistant/otto/internal/repository"
)

type Log struct {
	repo repository.AuditRepository
}

func New(repo repository.AuditRepository) *Log {
	return &Log{repo: repo}
}

// RecordTask writes one task-mutation audit row. before/after may be nil;
// metadata may be nil.
func (l *Log) RecordTask(ctx context.Context, taskID string, action domain.AuditAction, lane domain.Lane, actor string, before, after, metadata any) error {
	beforeJSON, err := marshalOptional(before)
	if err != nil {
		return fmt.Errorf("marshal audit before: %w", err)
	}
	afterJSON, err := marshalOptional(after)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}
	metadataJSON, err := marshalOptional(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	entry := &domain.TaskAudit{
		ID:           idgen.New(),
		TaskID:       taskID,
		Action:       action,
		Lane:         lane,
		Actor:        actor,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		MetadataJSON: metadataJSON,
		CreatedAt:    nowMillis(),
	}
	return l.repo.RecordTaskAudit(ctx, entry)
}

// RecordCommand writes one command-execution audit row.
func (l *Log) RecordCommand(ctx context.Context, command string, lane domain.Lane, status domain.CommandStatus, errMessage *string, metadata any) error {
	metadataJSON, err := marshalOptional(metadata)
	if err != nil {
		return fmt.Errorf("marshal command audit metadata: %w", err)
	}

	entry := &domain.CommandAudit{
		ID:           idgen.New(),
		Command:      command,
		Lane:         lane,
		Status:       status,
		ErrorMessage: errMessage,
		MetadataJSON: metadataJSON,
		CreatedAt:    nowMillis(),
	}
	return l.repo.RecordCommandAudit(ctx, entry)
}

func (l *Log) ListForTask(ctx context.Context, taskID string, limit int) ([]*domain.TaskAudit, error) {
	return l.repo.ListTaskAudit(ctx, taskID, limit)
}

func (l *Log) ListCommands(ctx context.Context, limit int) ([]*domain.CommandAudit, error) {
	return l.repo.ListCommandAudit(ctx, limit)
}

func marshalOptional(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// Package store owns the single embedded SQLite file Otto runs on. It
// opens the connection, applies the schema, and exposes the
// BeginImmediate primitive every repository's claim-and-reclaim logic
// is built on.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ottoassistant/otto/internal/domain"
)

// Store wraps the shared *sqlx.DB. Repositories embed it rather than
// hold their own connection so there is exactly one pool per process.
type Store struct {
	DB *sqlx.DB
}

// Open opens (creating if absent) the SQLite file at path in WAL mode
// with foreign keys enforced, and applies the schema. A single writer
// connection is enforced via SetMaxOpenConns(1): SQLite serializes
// writers regardless, and capping the pool avoids SQLITE_BUSY storms
// under concurrent claim attempts instead of leaning on busy_timeout
// alone.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		path,
	)

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{DB: db}
	if err := s.ensureProfile(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed profile: %w", err)
	}
	return s, nil
}

func (s *Store) ensureProfile(ctx context.Context) error {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO user_profile (id, updated_at)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`,
		domain.SingletonProfileID, now,
	)
	return err
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// BeginImmediate opens a transaction that acquires SQLite's write lock
// immediately rather than on first write (the DSN's _txlock=immediate
// makes every BeginTxx call do this). SQLite has no row-level locking,
// so this exclusive transaction IS the mutual exclusion primitive every
// claim/reclaim/CAS update in this package relies on. Named explicitly,
// rather than calling sqlx.Tx.BeginTxx directly at call sites, so the
// dependency on _txlock=immediate is visible at the point of use.
func (s *Store) BeginImmediate(ctx context.Context) (*sqlx.Tx, error) {
	return s.DB.BeginTxx(ctx, nil)
}

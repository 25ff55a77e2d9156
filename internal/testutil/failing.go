package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction, so rollback paths of multi-write operations can
// be exercised at precise points.
//
// ExecContext calls are counted starting at 1. Reads pass through.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.count.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// RecordingTaskStore is an in-memory task creator that fails for chosen
// titles. It is safe for concurrent use.
type RecordingTaskStore struct {
	FailTitles map[string]error

	mu      sync.Mutex
	created []*domain.Task
	calls   atomic.Int32
}

func (s *RecordingTaskStore) Create(_ context.Context, t *domain.Task) error {
	s.calls.Add(1)
	if err, ok := s.FailTitles[t.Title]; ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.created = append(s.created, &cp)
	return nil
}

// Created returns a copy of every successfully stored task.
func (s *RecordingTaskStore) Created() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Task(nil), s.created...)
}

// Calls reports how many Create calls were attempted.
func (s *RecordingTaskStore) Calls() int {
	return int(s.calls.Load())
}

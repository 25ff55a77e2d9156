package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, project_id, title, description, assignee, priority, status,
		due_date, owner_id, created_at, updated_at`

// SQLTaskRepo implements TaskRepo on SQLite or Postgres. Every method is a
// single statement, so one repo is safe to share between goroutines.
type SQLTaskRepo struct {
	conn    db.DBTX
	dialect db.Dialect
}

// NewSQLTaskRepo creates a new SQLTaskRepo.
func NewSQLTaskRepo(conn db.DBTX, dialect db.Dialect) *SQLTaskRepo {
	return &SQLTaskRepo{conn: conn, dialect: dialect}
}

func (r *SQLTaskRepo) q(query string) string {
	return db.Rebind(r.dialect, query)
}

func (r *SQLTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.conn.ExecContext(ctx, r.q(query),
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Assignee,
		string(t.Priority),
		string(t.Status),
		encodeOptionalTimestamp(t.DueDate),
		t.OwnerID,
		encodeTimestamp(t.CreatedAt),
		encodeTimestamp(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.conn.QueryRowContext(ctx, r.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// ListByProject returns a project's tasks in timeline order.
func (r *SQLTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ?
		ORDER BY due_date, created_at, title`
	return r.list(ctx, query, projectID)
}

func (r *SQLTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ?
		ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *SQLTaskRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.conn.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, assignee = ?, priority = ?, status = ?,
		due_date = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, r.q(query),
		t.Title,
		t.Description,
		t.Assignee,
		string(t.Priority),
		string(t.Status),
		encodeOptionalTimestamp(t.DueDate),
		encodeTimestamp(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, "task", t.ID)
}

func (r *SQLTaskRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, r.q(query), id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(res, "task", id)
}

// DeleteByProject removes every task of a project and reports how many went.
func (r *SQLTaskRepo) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	query := `DELETE FROM tasks WHERE project_id = ?`
	res, err := r.conn.ExecContext(ctx, r.q(query), projectID)
	if err != nil {
		return 0, fmt.Errorf("deleting project tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var priorityStr, statusStr, createdAtStr, updatedAtStr string
	var dueDateStr sql.NullString

	err := s.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Assignee,
		&priorityStr, &statusStr,
		&dueDateStr, &t.OwnerID,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Priority = domain.Priority(priorityStr)
	t.Status = domain.TaskStatus(statusStr)

	var parseErr error
	if t.DueDate, parseErr = decodeOptional(dueDateStr, time.RFC3339, "due_date"); parseErr != nil {
		return nil, parseErr
	}
	t.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &t, nil
}

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

const userColumns = `id, name, email, avatar_url, role, created_at, updated_at`

// SQLUserRepo implements UserRepo on SQLite or Postgres.
type SQLUserRepo struct {
	conn    db.DBTX
	dialect db.Dialect
}

func NewSQLUserRepo(conn db.DBTX, dialect db.Dialect) *SQLUserRepo {
	return &SQLUserRepo{conn: conn, dialect: dialect}
}

func (r *SQLUserRepo) q(query string) string {
	return db.Rebind(r.dialect, query)
}

// Upsert inserts the user or refreshes its profile fields. The stored role
// is never overwritten here; roles change only through SetRole.
func (r *SQLUserRepo) Upsert(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`
	_, err := r.conn.ExecContext(ctx, r.q(query),
		u.ID,
		u.Name,
		u.Email,
		u.AvatarURL,
		string(u.Role),
		encodeTimestamp(u.CreatedAt),
		encodeTimestamp(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (r *SQLUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.conn.QueryRowContext(ctx, r.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, err
}

func (r *SQLUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.conn.QueryContext(ctx, r.q(query))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (r *SQLUserRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	query := `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, r.q(query), string(role), encodeTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return requireAffected(res, "user", id)
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var roleStr, createdAtStr, updatedAtStr string

	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &roleStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Role = domain.Role(roleStr)

	var parseErr error
	u.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	u.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &u, nil
}

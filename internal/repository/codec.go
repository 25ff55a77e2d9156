package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// Dates and timestamps are stored as text in both dialects: calendar dates
// as YYYY-MM-DD, instants as RFC 3339 in UTC.

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func encodeDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// encodeOptionalDate stores the zero time as NULL.
func encodeOptionalDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return encodeDate(t)
}

func encodeTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func encodeOptionalTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTimestamp(*t)
}

// decodeOptional parses a nullable text column. NULL and "" decode to nil.
func decodeOptional(s sql.NullString, layout, column string) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", column, err)
	}
	return &t, nil
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}

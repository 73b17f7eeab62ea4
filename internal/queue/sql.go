package queue

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect selects placeholder and DDL syntax for SQLBackend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLBackend stores lines in the offline_records table.
type SQLBackend struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLBackend creates the table if needed.
func NewSQLBackend(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLBackend, error) {
	var ddl string
	switch dialect {
	case DialectSQLite:
		ddl = `CREATE TABLE IF NOT EXISTS offline_records (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			line       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	case DialectPostgres:
		ddl = `CREATE TABLE IF NOT EXISTS offline_records (
			id         BIGSERIAL PRIMARY KEY,
			line       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create offline_records: %w", err)
	}
	return &SQLBackend{db: db, dialect: dialect}, nil
}

// Append inserts one row.
func (b *SQLBackend) Append(ctx context.Context, line string) error {
	query := `INSERT INTO offline_records (line) VALUES (?)`
	if b.dialect == DialectPostgres {
		query = `INSERT INTO offline_records (line) VALUES ($1)`
	}
	_, err := b.db.ExecContext(ctx, query, line)
	return err
}

// Lines returns rows in insertion order.
func (b *SQLBackend) Lines(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT line FROM offline_records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Take snapshots the rows and remembers the highest id read. commit deletes
// up to that id, so rows inserted during the pass stay queued.
func (b *SQLBackend) Take(ctx context.Context) ([]string, func(context.Context) error, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, line FROM offline_records ORDER BY id`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		lines []string
		maxID int64
	)
	for rows.Next() {
		var (
			id   int64
			line string
		)
		if err := rows.Scan(&id, &line); err != nil {
			return nil, nil, err
		}
		lines = append(lines, line)
		if id > maxID {
			maxID = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	commit := func(ctx context.Context) error {
		if len(lines) == 0 {
			return nil
		}
		query := `DELETE FROM offline_records WHERE id <= ?`
		if b.dialect == DialectPostgres {
			query = `DELETE FROM offline_records WHERE id <= $1`
		}
		_, err := b.db.ExecContext(ctx, query, maxID)
		return err
	}
	return lines, commit, nil
}

package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit_records (
    id          UUID PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    operation   TEXT NOT NULL,
    args        TEXT[] NOT NULL,
    success     BOOLEAN NOT NULL,
    message     TEXT NOT NULL
)`

// PostgresSink mirrors audit records into an insert-only table.
type PostgresSink struct {
	db *pgxpool.Pool
}

// NewPostgresSink constructs a Postgres-backed sink.
func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the audit table when it does not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createAuditTable); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Append inserts rec.
func (s *PostgresSink) Append(ctx context.Context, rec Record) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		id = uuid.New()
	}
	args := rec.Args
	if args == nil {
		args = []string{}
	}
	_, err = s.db.Exec(ctx, `INSERT INTO audit_records (id, recorded_at, operation, args, success, message)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, rec.Timestamp.UTC(), rec.Operation, args, rec.Success, rec.Message)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

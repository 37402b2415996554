package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists audit records to the audit_log table.
//
// Expected schema:
//
//	CREATE TABLE audit_log (
//	    id          UUID PRIMARY KEY,
//	    timestamp   TIMESTAMPTZ NOT NULL,
//	    action      TEXT,
//	    user_id     TEXT,
//	    tenant_id   TEXT,
//	    method      TEXT NOT NULL,
//	    path        TEXT NOT NULL,
//	    status_code INT NOT NULL,
//	    ip          TEXT,
//	    request_id  TEXT
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store writing through the given connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, record Record) error {
	const query = `
		INSERT INTO audit_log (id, timestamp, action, user_id, tenant_id, method, path, status_code, ip, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Timestamp,
		nullable(record.Action),
		nullable(record.UserID),
		nullable(record.TenantID),
		record.Method,
		record.Path,
		record.StatusCode,
		nullable(record.IP),
		nullable(record.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert audit record %s: %w", record.ID, err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

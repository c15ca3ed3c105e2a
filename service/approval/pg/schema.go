package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the approval_requests table layout. Rows are append-only from
// the audit perspective: status and updated_at change, rows are never
// deleted.
const Schema = `
CREATE TABLE IF NOT EXISTS approval_requests (
    id               TEXT PRIMARY KEY,
    workflow_id      TEXT NOT NULL,
    agent_name       TEXT NOT NULL,
    task_description TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'expired', 'canceled')),
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL,
    expires_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS approval_requests_pending_expiry
    ON approval_requests (expires_at) WHERE status = 'pending';
`

// EnsureSchema creates the approval_requests table and its indexes when they
// do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}

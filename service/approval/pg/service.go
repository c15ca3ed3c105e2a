// Package pg provides the Postgres-backed approval.Store. Status transitions
// use per-row conditional updates (WHERE status='pending') so that multiple
// sweeper replicas and the human decision channel can race on the same rows
// without external locking: the first terminal transition commits, later
// ones affect zero rows.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/internal/idgen"
	"github.com/viant/approvals/service/approval"
)

const requestColumns = `id, workflow_id, agent_name, task_description, status, created_at, updated_at, expires_at`

// Service implements approval.Store on top of a pgx connection pool.
type Service struct {
	pool *pgxpool.Pool
}

// New creates a Postgres approval store.
func New(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) Create(ctx context.Context, request *approval.NewRequest) (*approval.Request, error) {
	now := clock.Now()
	if err := request.Validate(now); err != nil {
		return nil, err
	}
	created := &approval.Request{
		ID:              idgen.New(),
		WorkflowID:      request.WorkflowID,
		AgentName:       request.AgentName,
		TaskDescription: request.TaskDescription,
		Status:          approval.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       request.ExpiresAt,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO approval_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		created.ID, created.WorkflowID, created.AgentName, created.TaskDescription,
		created.Status, created.CreatedAt, created.UpdatedAt, created.ExpiresAt)
	if err != nil {
		return nil, storeError("create", err)
	}
	return created, nil
}

func (s *Service) Load(ctx context.Context, id string) (*approval.Request, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM approval_requests
		WHERE id = $1`, id)
	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", approval.ErrNotFound, id)
		}
		return nil, storeError("load", err)
	}
	return request, nil
}

func (s *Service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM approval_requests
		WHERE status = $1
		ORDER BY id`, approval.StatusPending)
	if err != nil {
		return nil, storeError("listPending", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Service) FindExpired(ctx context.Context, now time.Time, limit int) ([]*approval.Request, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM approval_requests
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at DESC, id
		LIMIT $3`, approval.StatusPending, now, limit)
	if err != nil {
		return nil, storeError("findExpired", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Service) MarkExpired(ctx context.Context, ids []string, now time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeError("markExpired", err)
	}
	defer tx.Rollback(ctx)

	// The status predicate re-checks the pending precondition per row, so a
	// request decided between FindExpired and this update is skipped rather
	// than overwritten.
	rows, err := tx.Query(ctx, `
		UPDATE approval_requests
		SET status = $1, updated_at = $2
		WHERE id = ANY($3) AND status = $4
		RETURNING id`,
		approval.StatusExpired, now, ids, approval.StatusPending)
	if err != nil {
		return nil, storeError("markExpired", err)
	}
	var updated []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, storeError("markExpired", err)
		}
		updated = append(updated, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, storeError("markExpired", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, storeError("markExpired", err)
	}
	return updated, nil
}

func (s *Service) SetDecision(ctx context.Context, id string, approved bool, reason string) (*approval.Request, error) {
	status := approval.StatusApproved
	if !approved {
		status = approval.StatusRejected
	}
	return s.transition(ctx, id, status)
}

func (s *Service) Cancel(ctx context.Context, id string) (*approval.Request, error) {
	return s.transition(ctx, id, approval.StatusCanceled)
}

func (s *Service) transition(ctx context.Context, id string, to approval.Status) (*approval.Request, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE approval_requests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING `+requestColumns,
		to, clock.Now(), id, approval.StatusPending)
	request, err := scanRequest(row)
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError("transition", err)
	}

	// Zero rows updated - distinguish a missing request from one that
	// already reached a terminal state.
	var current approval.Status
	err = s.pool.QueryRow(ctx, `SELECT status FROM approval_requests WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", approval.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeError("transition", err)
	}
	return nil, fmt.Errorf("%w: %s is %s", approval.ErrInvalidState, id, current)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(1) FROM approval_requests`).Scan(&count); err != nil {
		return 0, storeError("count", err)
	}
	return count, nil
}

func scanRequest(row pgx.Row) (*approval.Request, error) {
	request := &approval.Request{}
	err := row.Scan(
		&request.ID, &request.WorkflowID, &request.AgentName, &request.TaskDescription,
		&request.Status, &request.CreatedAt, &request.UpdatedAt, &request.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func collectRequests(rows pgx.Rows) ([]*approval.Request, error) {
	var requests []*approval.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, storeError("scan", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("scan", err)
	}
	return requests, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", approval.ErrStoreUnavailable, op, err)
}

var _ approval.Store = (*Service)(nil)

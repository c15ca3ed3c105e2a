// Package memory provides an in-memory approval.Store used by unit tests and
// embedded runtimes. It enforces the same conditional-transition semantics as
// the SQL-backed store so that the sweeper is backend agnostic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/internal/idgen"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/dao/store"
)

// key selector - grab ID field
func requestKey(r *approval.Request) string { return r.ID }

type service struct {
	// mu serialises multi-row operations so that MarkExpired behaves like a
	// single transaction; per-record access goes through the DAO store.
	mu      sync.Mutex
	records *store.MemoryStore[string, approval.Request]
}

// New creates an in-memory approval store.
func New() approval.Store {
	return &service{
		records: store.NewMemoryStore[string, approval.Request](requestKey),
	}
}

func (s *service) Create(ctx context.Context, request *approval.NewRequest) (*approval.Request, error) {
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
	if err := s.records.Save(ctx, created.Clone()); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Load(ctx context.Context, id string) (*approval.Request, error) {
	record, err := s.records.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", approval.ErrNotFound, id)
	}
	return record.Clone(), nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, record := range all {
		if record.Status == approval.StatusPending {
			pending = append(pending, record.Clone())
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

func (s *service) FindExpired(ctx context.Context, now time.Time, limit int) ([]*approval.Request, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	var overdue []*approval.Request
	for _, record := range all {
		if record.Overdue(now) {
			overdue = append(overdue, record.Clone())
		}
	}
	// Most overdue first, ties broken by id for a deterministic order.
	sort.Slice(overdue, func(i, j int) bool {
		if !overdue[i].ExpiresAt.Equal(overdue[j].ExpiresAt) {
			return overdue[i].ExpiresAt.After(overdue[j].ExpiresAt)
		}
		return overdue[i].ID < overdue[j].ID
	})
	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return overdue, nil
}

func (s *service) MarkExpired(ctx context.Context, ids []string, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated []string
	for _, id := range ids {
		record, err := s.records.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		// A row already decided between FindExpired and here is skipped,
		// never overwritten: first terminal transition wins.
		if record == nil || record.Status != approval.StatusPending {
			continue
		}
		expired := record.Clone()
		expired.Status = approval.StatusExpired
		expired.UpdatedAt = now
		if err = s.records.Save(ctx, expired); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	return updated, nil
}

func (s *service) SetDecision(ctx context.Context, id string, approved bool, reason string) (*approval.Request, error) {
	status := approval.StatusApproved
	if !approved {
		status = approval.StatusRejected
	}
	return s.transition(ctx, id, status)
}

func (s *service) Cancel(ctx context.Context, id string) (*approval.Request, error) {
	return s.transition(ctx, id, approval.StatusCanceled)
}

func (s *service) transition(ctx context.Context, id string, to approval.Status) (*approval.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.records.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", approval.ErrNotFound, id)
	}
	if !approval.CanTransition(record.Status, to) {
		return nil, fmt.Errorf("%w: %s is %s", approval.ErrInvalidState, id, record.Status)
	}
	updated := record.Clone()
	updated.Status = to
	updated.UpdatedAt = clock.Now()
	if err = s.records.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

func (s *service) Count(_ context.Context) (int, error) {
	return s.records.Len(), nil
}

var _ approval.Store = (*service)(nil)

package approval

import (
	"context"
	"time"
)

// Store is the single owner of approval request rows. All mutation goes
// through it; no other component writes request state directly.
//
// Rows are never deleted - a request that reached a terminal state stays
// around as an immutable audit record, only status and updatedAt change on
// the way there.
type Store interface {
	// Create inserts a new pending request with createdAt=updatedAt=now.
	// It fails with ErrValidation when required fields are empty or the
	// expiry deadline is not in the future.
	Create(ctx context.Context, request *NewRequest) (*Request, error)

	// Load returns the request with the given id or ErrNotFound.
	Load(ctx context.Context, id string) (*Request, error)

	// ListPending returns all requests still awaiting a decision.
	ListPending(ctx context.Context) ([]*Request, error)

	// FindExpired returns up to limit pending requests whose deadline lies
	// before now, most overdue first (expiresAt descending, ties broken by
	// id) so that sweeps are deterministic and repeatable.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*Request, error)

	// MarkExpired flips the given requests to expired, but only those whose
	// status is still pending - a row decided concurrently is skipped, never
	// overwritten. The batch is applied atomically (a single transaction)
	// and the ids actually transitioned are returned.
	MarkExpired(ctx context.Context, ids []string, now time.Time) ([]string, error)

	// SetDecision transitions a pending request to approved or rejected and
	// returns the updated row. It fails with ErrInvalidState when the
	// request already reached a terminal state (e.g. expired).
	SetDecision(ctx context.Context, id string, approved bool, reason string) (*Request, error)

	// Cancel transitions a pending request to canceled, used by the
	// orchestrator when the owning workflow terminates first. Same state
	// rules as SetDecision.
	Cancel(ctx context.Context, id string) (*Request, error)

	// Count returns the total number of rows, terminal states included.
	Count(ctx context.Context) (int, error)
}

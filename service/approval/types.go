package approval

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of an approval request. A request
// starts as pending and moves forward into exactly one terminal state; no
// transition ever leaves a terminal state.
type Status string

const (
	// StatusPending indicates the request awaits a human decision.
	StatusPending Status = "pending"

	// StatusApproved indicates a human approved the request.
	StatusApproved Status = "approved"

	// StatusRejected indicates a human rejected the request.
	StatusRejected Status = "rejected"

	// StatusExpired indicates the deadline passed before a decision was made.
	StatusExpired Status = "expired"

	// StatusCanceled indicates the owning workflow terminated while the
	// request was still pending.
	StatusCanceled Status = "canceled"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusExpired, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s.Valid() && s != StatusPending
}

// CanTransition reports whether the from -> to transition is allowed. Only
// pending requests may move, and only into a terminal state: first terminal
// transition wins, later ones are rejected rather than overwritten.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.Terminal()
}

// MaxTaskDescription bounds the human-readable summary so that UIs and
// notification channels can render it without truncation surprises.
const MaxTaskDescription = 1024

// Request represents a request for human approval raised by an agent or
// workflow node.
type Request struct {
	ID              string    `json:"id"`                        // globally unique, primary key
	WorkflowID      string    `json:"workflowId"`                // owning workflow execution
	AgentName       string    `json:"agentName"`                 // logical agent/workflow node that raised the request
	TaskDescription string    `json:"taskDescription,omitempty"` // human-readable summary
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"` // refreshed on every status transition
	ExpiresAt       time.Time `json:"expiresAt"` // deadline after which a pending request is no longer actionable
}

// Clone returns a shallow copy so that callers can hand out requests without
// exposing store-owned state to mutation.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// Overdue reports whether the request is pending past its deadline.
func (r *Request) Overdue(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt.Before(now)
}

// NewRequest carries the caller-supplied fields of Store.Create.
type NewRequest struct {
	WorkflowID      string    `json:"workflowId"`
	AgentName       string    `json:"agentName"`
	TaskDescription string    `json:"taskDescription,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// Validate checks the invariants enforced synchronously by Store.Create; a
// violation is reported as ErrValidation and nothing is persisted.
func (n *NewRequest) Validate(now time.Time) error {
	if n == nil {
		return fmt.Errorf("%w: nil request", ErrValidation)
	}
	if n.WorkflowID == "" {
		return fmt.Errorf("%w: workflowId was empty", ErrValidation)
	}
	if n.AgentName == "" {
		return fmt.Errorf("%w: agentName was empty", ErrValidation)
	}
	if len(n.TaskDescription) > MaxTaskDescription {
		return fmt.Errorf("%w: taskDescription exceeds %v bytes", ErrValidation, MaxTaskDescription)
	}
	if !n.ExpiresAt.After(now) {
		return fmt.Errorf("%w: expiresAt %v is not after %v", ErrValidation, n.ExpiresAt, now)
	}
	return nil
}

// Decision represents the outcome of a human approve/reject call.
type Decision struct {
	ID        string    `json:"id"` // same as request.ID
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

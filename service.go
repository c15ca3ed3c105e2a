package approvals

import (
	"context"
	"fmt"

	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/internal/metrics"
	"github.com/viant/approvals/policy"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/approval/memory"
	"github.com/viant/approvals/service/messaging"
	mmemory "github.com/viant/approvals/service/messaging/memory"
	"github.com/viant/approvals/service/notifier"
	"github.com/viant/approvals/service/sweeper"
)

// Service aggregates the approval store, the expiry sweeper and the event
// queue. All request mutation flows through it so that every transition is
// mirrored as an event on the queue.
type Service struct {
	config   *Config
	store    approval.Store
	queue    messaging.Queue[approval.Event]
	notifier notifier.Notifier
	sweeper  *sweeper.Service
	policy   *policy.Policy
	runtime  *Runtime
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.store == nil {
		s.store = memory.New()
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[approval.Event](mmemory.DefaultConfig())
	}
	if s.notifier == nil {
		s.notifier = notifier.NewQueue(s.queue)
	}
	if s.sweeper == nil {
		sweeperConfig, err := s.config.Sweeper.ToConfig()
		if err != nil {
			return err
		}
		s.sweeper = sweeper.New(s.store, s.notifier, sweeperConfig)
	}
	if s.policy == nil {
		s.policy = policy.FromConfig(s.config.Policy)
	}
	s.runtime = &Runtime{sweeper: s.sweeper}
	return nil
}

// New creates a service; unset collaborators default to the in-memory store,
// an in-memory event queue and a queue-backed notifier.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// Store returns the approval store.
func (s *Service) Store() approval.Store { return s.store }

// Queue returns the approval event queue.
func (s *Service) Queue() messaging.Queue[approval.Event] { return s.queue }

// Sweeper returns the expiry sweeper.
func (s *Service) Sweeper() *sweeper.Service { return s.sweeper }

// Runtime returns the embedded runtime controlling the sweep loop.
func (s *Service) Runtime() *Runtime { return s.runtime }

// CreateRequest registers a new pending approval request and publishes a
// request.created event. When an auto-decision policy matches the requesting
// agent the decision is recorded immediately, with the usual audit trail.
func (s *Service) CreateRequest(ctx context.Context, request *approval.NewRequest) (*approval.Request, error) {
	created, err := s.store.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	metrics.RequestsCreated.Inc()
	_ = s.queue.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: created})

	effective := policy.FromContext(ctx)
	if effective == nil {
		effective = s.policy
	}
	switch effective.Evaluate(ctx, request.AgentName, request.TaskDescription) {
	case policy.OutcomeApprove:
		return s.Decide(ctx, created.ID, true, "auto-approved by policy")
	case policy.OutcomeReject:
		return s.Decide(ctx, created.ID, false, "auto-rejected by policy")
	}
	return created, nil
}

// Get returns a request by id.
func (s *Service) Get(ctx context.Context, id string) (*approval.Request, error) {
	return s.store.Load(ctx, id)
}

// Pending lists requests still awaiting a decision.
func (s *Service) Pending(ctx context.Context) ([]*approval.Request, error) {
	return s.store.ListPending(ctx)
}

// Decide records a human approve/reject decision and publishes a
// decision.created event. The store rejects decisions on requests that
// already reached a terminal state.
func (s *Service) Decide(ctx context.Context, id string, approved bool, reason string) (*approval.Request, error) {
	updated, err := s.store.SetDecision(ctx, id, approved, reason)
	if err != nil {
		return nil, err
	}
	outcome := string(updated.Status)
	metrics.DecisionsRecorded.WithLabelValues(outcome).Inc()
	decision := &approval.Decision{ID: id, Approved: approved, Reason: reason, DecidedAt: clock.Now()}
	_ = s.queue.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: decision})
	return updated, nil
}

// CancelRequest transitions a pending request to canceled on behalf of the
// orchestrator and publishes a request.canceled event.
func (s *Service) CancelRequest(ctx context.Context, id string) (*approval.Request, error) {
	updated, err := s.store.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.queue.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCanceled, Data: updated})
	return updated, nil
}

// Sweep runs exactly one expiry sweep cycle.
func (s *Service) Sweep(ctx context.Context) (sweeper.Summary, error) {
	return s.sweeper.RunCycle(ctx)
}

// Health verifies store connectivity.
func (s *Service) Health(ctx context.Context) error {
	if _, err := s.store.Count(ctx); err != nil {
		return fmt.Errorf("store is unhealthy: %w", err)
	}
	return nil
}

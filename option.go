package approvals

import (
	"github.com/viant/approvals/policy"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/messaging"
	"github.com/viant/approvals/service/notifier"
	"github.com/viant/approvals/service/sweeper"
)

// Option customises a Service.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithStore sets the approval store backend.
func WithStore(store approval.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithQueue sets the approval event queue.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithNotifier sets the expiry notifier; defaults to a queue-backed notifier
// publishing onto the service event queue.
func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithSweeper sets a pre-built sweeper, overriding the configured one.
func WithSweeper(svc *sweeper.Service) Option {
	return func(s *Service) { s.sweeper = svc }
}

// WithPolicy sets the auto-decision policy applied to new requests; a request
// level policy attached to the context takes precedence.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

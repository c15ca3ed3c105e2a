// Package sweeper reclaims overdue pending approval requests. A sweep cycle
// reads up to a batch of stale requests, flips those still pending to
// expired in a single conditional batch update, and emits one cancellation
// signal per transitioned request. The cycle is idempotent and safe to run
// from multiple replicas concurrently - correctness comes from the store's
// per-row conditional update, not from in-process locking.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/internal/metrics"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/notifier"
	"github.com/viant/approvals/tracing"
)

// Config represents sweeper configuration.
type Config struct {
	// BatchSize caps the number of overdue requests handled per cycle.
	BatchSize int `json:"batchSize" yaml:"batchSize"`

	// PollingInterval is how often Start runs a cycle in embedded mode.
	PollingInterval time.Duration `json:"pollingInterval" yaml:"pollingInterval"`
}

// DefaultConfig returns the default sweeper configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:       100,
		PollingInterval: time.Minute,
	}
}

// Summary reports the outcome of one sweep cycle.
type Summary struct {
	Found          int `json:"found"`          // overdue pending requests selected
	Expired        int `json:"expired"`        // requests actually transitioned
	Skipped        int `json:"skipped"`        // selected but decided concurrently
	NotifyFailures int `json:"notifyFailures"` // expiry signals that failed delivery
}

// String renders the one-line operator summary.
func (s Summary) String() string {
	return fmt.Sprintf("sweep: found=%d expired=%d skipped=%d notifyFailures=%d",
		s.Found, s.Expired, s.Skipped, s.NotifyFailures)
}

// Service runs expiry sweep cycles against an approval store.
type Service struct {
	config     Config
	store      approval.Store
	notifier   notifier.Notifier
	shutdownCh chan struct{}
}

// New creates a sweeper service.
func New(store approval.Store, n notifier.Notifier, config Config) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.PollingInterval <= 0 {
		config.PollingInterval = DefaultConfig().PollingInterval
	}
	if n == nil {
		n = notifier.Nop()
	}
	return &Service{
		config:     config,
		store:      store,
		notifier:   n,
		shutdownCh: make(chan struct{}),
	}
}

// RunCycle performs exactly one sweep cycle. A store failure during the read
// aborts with no side effects; the conditional batch write is atomic, so a
// cycle either fully applies or fully rolls back. Notification failures do
// not roll back expiry - the expired status is the source of truth.
func (s *Service) RunCycle(ctx context.Context) (Summary, error) {
	started := time.Now()
	now := clock.Now()

	ctx, span := tracing.StartSpan(ctx, "sweeper.cycle", "INTERNAL")
	var summary Summary
	var err error
	defer func() {
		span.WithAttributes(map[string]string{
			"sweep.found":   strconv.Itoa(summary.Found),
			"sweep.expired": strconv.Itoa(summary.Expired),
			"sweep.skipped": strconv.Itoa(summary.Skipped),
		})
		tracing.EndSpan(span, err)
		metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}()

	var found []*approval.Request
	if found, err = s.store.FindExpired(ctx, now, s.config.BatchSize); err != nil {
		return summary, fmt.Errorf("failed to find expired requests: %w", err)
	}
	summary.Found = len(found)
	metrics.SweepFound.Add(float64(summary.Found))
	if len(found) == 0 {
		return summary, nil
	}

	workflowByID := make(map[string]string, len(found))
	ids := make([]string, 0, len(found))
	for _, request := range found {
		ids = append(ids, request.ID)
		workflowByID[request.ID] = request.WorkflowID
	}

	var expired []string
	if expired, err = s.store.MarkExpired(ctx, ids, now); err != nil {
		return summary, fmt.Errorf("failed to mark requests expired: %w", err)
	}
	summary.Expired = len(expired)
	summary.Skipped = summary.Found - summary.Expired
	metrics.SweepExpired.Add(float64(summary.Expired))
	metrics.SweepSkipped.Add(float64(summary.Skipped))

	for _, id := range expired {
		if nErr := s.notifier.NotifyExpired(ctx, workflowByID[id], id); nErr != nil {
			summary.NotifyFailures++
			metrics.NotifyFailures.Inc()
			log.Printf("failed to notify expiry of %v (workflow %v): %v", id, workflowByID[id], nErr)
		}
	}
	return summary, nil
}

// Start runs sweep cycles on the configured interval until the context is
// cancelled or Shutdown is called. Cycle errors are logged and the loop
// continues - the next tick is the retry.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			summary, err := s.RunCycle(ctx)
			if err != nil {
				log.Printf("sweep cycle failed: %v", err)
				continue
			}
			if summary.Found > 0 {
				log.Print(summary.String())
			}
		}
	}
}

// Shutdown stops the Start loop.
func (s *Service) Shutdown() {
	close(s.shutdownCh)
}

package notifier

import (
	"context"
	"fmt"

	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/messaging"
)

// Queue publishes expiry signals as approval events onto a message queue
// consumed by the workflow orchestrator.
type Queue struct {
	queue messaging.Queue[approval.Event]
}

// NewQueue creates a queue-backed notifier.
func NewQueue(queue messaging.Queue[approval.Event]) *Queue {
	return &Queue{queue: queue}
}

// NotifyExpired publishes a request.expired event carrying the workflow id so
// that the orchestrator can terminate the in-flight workflow.
func (n *Queue) NotifyExpired(ctx context.Context, workflowID, requestID string) error {
	event := &approval.Event{
		Topic: approval.TopicRequestExpired,
		Data: &approval.Expiry{
			RequestID:  requestID,
			WorkflowID: workflowID,
			ExpiredAt:  clock.Now(),
		},
	}
	if err := n.queue.Publish(ctx, event); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrDelivery, workflowID, requestID, err)
	}
	return nil
}

var _ Notifier = (*Queue)(nil)

// Package notifier defines the contract between the expiry sweeper and the
// workflow orchestrator. Delivery is at-least-once: the orchestrator must be
// idempotent under duplicate notifications for the same
// (workflowID, requestID) pair, since an expiry is never rolled back when its
// notification fails.
package notifier

import (
	"context"
	"errors"
)

// ErrDelivery wraps notification transport failures. The expired status in
// the store remains the source of truth; redelivery is the notifier's
// responsibility, not the sweeper's.
var ErrDelivery = errors.New("notifier: delivery failed")

// Notifier receives cancellation signals for workflows whose approval
// request passed its deadline.
type Notifier interface {
	NotifyExpired(ctx context.Context, workflowID, requestID string) error
}

// Func adapts a plain function to the Notifier interface.
type Func func(ctx context.Context, workflowID, requestID string) error

// NotifyExpired calls f.
func (f Func) NotifyExpired(ctx context.Context, workflowID, requestID string) error {
	return f(ctx, workflowID, requestID)
}

// Nop returns a notifier that discards all signals, for sweeps run without
// an orchestrator attached.
func Nop() Notifier {
	return Func(func(context.Context, string, string) error { return nil })
}

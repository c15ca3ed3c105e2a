package notifier

import (
	"context"

	"github.com/viant/approvals/service/dao/store"
)

// delivery is a dedupe ledger entry keyed by (workflowID, requestID).
type delivery struct {
	Key string
}

func deliveryKey(d *delivery) string { return d.Key }

type dedupe struct {
	next      Notifier
	delivered *store.MemoryStore[string, delivery]
}

// Dedupe wraps a notifier with an in-process ledger that drops duplicate
// signals for the same (workflowID, requestID) pair. A failed delivery is
// not recorded, so the next sweep retries it.
func Dedupe(next Notifier) Notifier {
	return &dedupe{
		next:      next,
		delivered: store.NewMemoryStore[string, delivery](deliveryKey),
	}
}

func (d *dedupe) NotifyExpired(ctx context.Context, workflowID, requestID string) error {
	key := workflowID + "/" + requestID
	if seen, _ := d.delivered.Load(ctx, key); seen != nil {
		return nil
	}
	if err := d.next.NotifyExpired(ctx, workflowID, requestID); err != nil {
		return err
	}
	return d.delivered.Save(ctx, &delivery{Key: key})
}

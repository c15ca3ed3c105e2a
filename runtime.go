package approvals

import (
	"context"

	"github.com/viant/approvals/service/sweeper"
)

// Runtime controls the background sweep loop of an embedded service.
type Runtime struct {
	sweeper *sweeper.Service
}

// Start runs the periodic sweep loop until the context is cancelled or
// Shutdown is called. It blocks; run it on its own goroutine.
func (r *Runtime) Start(ctx context.Context) error {
	return r.sweeper.Start(ctx)
}

// Shutdown stops the sweep loop.
func (r *Runtime) Shutdown() {
	r.sweeper.Shutdown()
}

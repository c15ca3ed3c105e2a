package sweeper_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvals/internal/clock"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/approval/memory"
	"github.com/viant/approvals/service/notifier"
	"github.com/viant/approvals/service/sweeper"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func frozenClock(t *testing.T, at time.Time) {
	t.Helper()
	previous := clock.NowFunc
	clock.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { clock.NowFunc = previous })
}

// recordingNotifier captures expiry signals for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (r *recordingNotifier) NotifyExpired(_ context.Context, workflowID, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("%w: broker down", notifier.ErrDelivery)
	}
	r.calls = append(r.calls, workflowID+"/"+requestID)
	return nil
}

// failingStore simulates an unreachable store.
type failingStore struct {
	approval.Store
}

func (f *failingStore) FindExpired(context.Context, time.Time, int) ([]*approval.Request, error) {
	return nil, fmt.Errorf("%w: connection refused", approval.ErrStoreUnavailable)
}

// racingStore commits a human decision between FindExpired and MarkExpired,
// reproducing the decision/sweep race on a single row.
type racingStore struct {
	approval.Store
	decideID string
}

func (r *racingStore) FindExpired(ctx context.Context, now time.Time, limit int) ([]*approval.Request, error) {
	found, err := r.Store.FindExpired(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	if r.decideID != "" {
		if _, err = r.Store.SetDecision(ctx, r.decideID, true, "beat the sweep"); err != nil {
			return nil, err
		}
		r.decideID = ""
	}
	return found, nil
}

func TestRunCycle(t *testing.T) {
	frozenClock(t, baseTime)
	ctx := context.Background()

	t.Run("overdue request expires and notifies once", func(t *testing.T) {
		store := memory.New()
		created, err := store.Create(ctx, &approval.NewRequest{
			WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(time.Minute),
		})
		assert.NoError(t, err)

		now := baseTime.Add(time.Hour + time.Minute)
		frozenClock(t, now)

		recorder := &recordingNotifier{}
		svc := sweeper.New(store, recorder, sweeper.DefaultConfig())

		summary, err := svc.RunCycle(ctx)
		assert.NoError(t, err)
		assert.Equal(t, sweeper.Summary{Found: 1, Expired: 1}, summary)
		assert.Equal(t, []string{"wf-1/" + created.ID}, recorder.calls)

		expired, err := store.Load(ctx, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, approval.StatusExpired, expired.Status)
		assert.Equal(t, now, expired.UpdatedAt)
	})

	t.Run("request not yet due is untouched", func(t *testing.T) {
		frozenClock(t, baseTime)
		store := memory.New()
		overdue, err := store.Create(ctx, &approval.NewRequest{
			WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(10 * time.Minute),
		})
		assert.NoError(t, err)
		notDue, err := store.Create(ctx, &approval.NewRequest{
			WorkflowID: "wf-2", AgentName: "planner", ExpiresAt: baseTime.Add(3 * time.Hour),
		})
		assert.NoError(t, err)

		frozenClock(t, baseTime.Add(time.Hour))
		svc := sweeper.New(store, notifier.Nop(), sweeper.Config{BatchSize: 20})

		summary, err := svc.RunCycle(ctx)
		assert.NoError(t, err)
		assert.Equal(t, sweeper.Summary{Found: 1, Expired: 1}, summary)

		loaded, err := store.Load(ctx, notDue.ID)
		assert.NoError(t, err)
		assert.Equal(t, approval.StatusPending, loaded.Status)

		loaded, err = store.Load(ctx, overdue.ID)
		assert.NoError(t, err)
		assert.Equal(t, approval.StatusExpired, loaded.Status)
	})

	t.Run("second cycle is a no-op", func(t *testing.T) {
		frozenClock(t, baseTime)
		store := memory.New()
		_, err := store.Create(ctx, &approval.NewRequest{
			WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(time.Minute),
		})
		assert.NoError(t, err)

		frozenClock(t, baseTime.Add(time.Hour))
		recorder := &recordingNotifier{}
		svc := sweeper.New(store, recorder, sweeper.DefaultConfig())

		summary, err := svc.RunCycle(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, summary.Expired)

		summary, err = svc.RunCycle(ctx)
		assert.NoError(t, err)
		assert.Equal(t, sweeper.Summary{}, summary)
		assert.Len(t, recorder.calls, 1)
	})

	t.Run("concurrent decision is skipped without notification", func(t *testing.T) {
		frozenClock(t, baseTime)
		store := memory.New()
		created, err := store.Create(ctx, &approval.NewRequest{
			WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(time.Minute),
		})
		assert.NoError(t, err)

		frozenClock(t, baseTime.Add(time.Hour))
		recorder := &recordingNotifier{}
		svc := sweeper.New(&racingStore{Store: store, decideID: created.ID}, recorder, sweeper.DefaultConfig())

		summary, err := svc.RunCycle(ctx)
		assert.NoError(t, err)
		assert.Equal(t, sweeper.Summary{Found: 1, Expired: 0, Skipped: 1}, summary)
		assert.Empty(t, recorder.calls)

		loaded, err := store.Load(ctx, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, approval.StatusApproved, loaded.Status)
	})

	t.Run("notification failure does not roll back expiry", func(t *testing.T) {
		frozenClock(t, baseTime)
		store := memory.New()
		created, err := store.Create(ctx, &approval.NewRequest{
			WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(time.Minute),
		})
		assert.NoError(t, err)

		frozenClock(t, baseTime.Add(time.Hour))
		recorder := &recordingNotifier{fail: true}
		svc := sweeper.New(store, recorder, sweeper.DefaultConfig())

		summary, err := svc.RunCycle(ctx)
		assert.NoError(t, err)
		assert.Equal(t, sweeper.Summary{Found: 1, Expired: 1, NotifyFailures: 1}, summary)

		loaded, err := store.Load(ctx, created.ID)
		assert.NoError(t, err)
		assert.Equal(t, approval.StatusExpired, loaded.Status)
	})

	t.Run("store failure aborts with no side effects", func(t *testing.T) {
		frozenClock(t, baseTime)
		store := memory.New()
		svc := sweeper.New(&failingStore{Store: store}, notifier.Nop(), sweeper.DefaultConfig())

		_, err := svc.RunCycle(ctx)
		assert.ErrorIs(t, err, approval.ErrStoreUnavailable)
	})

	t.Run("row count is unchanged by sweeping", func(t *testing.T) {
		frozenClock(t, baseTime)
		store := memory.New()
		for i := 0; i < 5; i++ {
			_, err := store.Create(ctx, &approval.NewRequest{
				WorkflowID: fmt.Sprintf("wf-%d", i), AgentName: "planner",
				ExpiresAt: baseTime.Add(time.Duration(i+1) * time.Minute),
			})
			assert.NoError(t, err)
		}
		frozenClock(t, baseTime.Add(time.Hour))
		svc := sweeper.New(store, notifier.Nop(), sweeper.DefaultConfig())

		before, err := store.Count(ctx)
		assert.NoError(t, err)
		_, err = svc.RunCycle(ctx)
		assert.NoError(t, err)
		after, err := store.Count(ctx)
		assert.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestStartShutdown(t *testing.T) {
	frozenClock(t, baseTime)
	ctx := context.Background()
	store := memory.New()
	_, err := store.Create(ctx, &approval.NewRequest{
		WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: baseTime.Add(time.Minute),
	})
	assert.NoError(t, err)

	frozenClock(t, baseTime.Add(time.Hour))
	recorder := &recordingNotifier{}
	svc := sweeper.New(store, recorder, sweeper.Config{BatchSize: 10, PollingInterval: 5 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	assert.Eventually(t, func() bool {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		return len(recorder.calls) == 1
	}, time.Second, 5*time.Millisecond)

	svc.Shutdown()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

package push

import (
	"context"
	"log/slog"
	"time"
)

// DefaultWorkerTimeout bounds the wait for the background worker.
const DefaultWorkerTimeout = 5 * time.Second

// Gate waits, for a bounded time, for the background worker registration to become active.
type Gate struct {
	registry WorkerRegistry
}

// NewGate creates a gate over the given registry. A nil registry means the
// platform has no worker capability.
func NewGate(registry WorkerRegistry) *Gate {
	return &Gate{registry: registry}
}

// Await returns the worker handle if it becomes ready before timeout elapses.
// It returns false on timeout, on ctx cancellation, or when there is no worker
// capability. It never fails otherwise.
func (g *Gate) Await(ctx context.Context, timeout time.Duration) (WorkerHandle, bool) {
	if g == nil || g.registry == nil {
		return nil, false
	}
	if timeout <= 0 {
		timeout = DefaultWorkerTimeout
	}

	// Stops the registry's wait once we stop listening, whichever branch wins.
	readyCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case handle, ok := <-g.registry.Ready(readyCtx):
		if !ok || handle == nil {
			return nil, false
		}
		return handle, true
	case <-timer.C:
		slog.Warn("worker readiness wait timed out", "timeout", timeout)
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

package platform

import (
	"context"
	"log/slog"
	"time"

	"taskpush/internal/push"

	"github.com/hibiken/asynq"
)

const (
	defaultPollInterval = 200 * time.Millisecond

	serverStatusActive = "active"
)

var _ push.WorkerRegistry = (*AsynqRegistry)(nil)

// serverLister is the part of *asynq.Inspector the registry needs.
type serverLister interface {
	Servers() ([]*asynq.ServerInfo, error)
}

// AsynqRegistry reports the worker ready once an active asynq server is
// consuming the worker queue.
type AsynqRegistry struct {
	servers      serverLister
	queue        string
	handle       workerHandle
	pollInterval time.Duration
}

// NewAsynqRegistry creates a registry that watches the given queue through
// the inspector. The handle it hands out exposes manager under scope.
func NewAsynqRegistry(inspector *asynq.Inspector, queue, scope string, manager push.PushManager) *AsynqRegistry {
	return newRegistry(inspector, queue, scope, manager, defaultPollInterval)
}

func newRegistry(servers serverLister, queue, scope string, manager push.PushManager, poll time.Duration) *AsynqRegistry {
	return &AsynqRegistry{
		servers:      servers,
		queue:        queue,
		handle:       workerHandle{scope: scope, manager: manager},
		pollInterval: poll,
	}
}

// Ready polls the server list until a worker is active or ctx ends.
// The channel receives at most one handle and is always closed.
func (r *AsynqRegistry) Ready(ctx context.Context) <-chan push.WorkerHandle {
	ch := make(chan push.WorkerHandle, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		for {
			if r.active() {
				ch <- r.handle
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return ch
}

func (r *AsynqRegistry) active() bool {
	servers, err := r.servers.Servers()
	if err != nil {
		slog.Debug("listing worker servers failed", "error", err)
		return false
	}

	for _, s := range servers {
		if s.Status == serverStatusActive && s.Queues[r.queue] > 0 {
			return true
		}
	}
	return false
}

type workerHandle struct {
	scope   string
	manager push.PushManager
}

func (h workerHandle) Scope() string                 { return h.scope }
func (h workerHandle) PushManager() push.PushManager { return h.manager }

package cli

import (
	"errors"
	"io"

	"taskpush/internal/config"
	"taskpush/internal/infra/gateway"
	"taskpush/internal/infra/platform"
	"taskpush/internal/infra/queue"
	"taskpush/internal/push"

	"github.com/redis/go-redis/v9"
)

// Runtime builds the collaborators the commands need.
type Runtime struct {
	Coordinator func(cfg *config.Config) (*push.Coordinator, io.Closer, error)
	Enqueuer    func(cfg *config.Config) (queue.Enqueuer, io.Closer, error)
}

// DefaultRuntime wires the commands to Redis, the local worker and the gateway.
func DefaultRuntime() Runtime {
	return Runtime{
		Coordinator: newCoordinator,
		Enqueuer:    newEnqueuer,
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newCoordinator(cfg *config.Config) (*push.Coordinator, io.Closer, error) {
	if cfg.Push.GatewayURL == "" {
		return nil, nil, errors.New("push.gateway_url is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	inspector := queue.NewInspector(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)

	manager := platform.NewRedisPushManager(rdb, cfg.Push.Scope, cfg.Push.PushServiceURL)
	registry := platform.NewAsynqRegistry(inspector, queue.Name, cfg.Push.Scope, manager)
	gw := gateway.New(cfg.Push.GatewayURL, cfg.Push.APIKey, cfg.Push.UserID)

	coord := push.NewCoordinator(platform.New(cfg.Push.Permission, registry), gw, gw, push.Config{
		VAPIDPublicKey:          cfg.Push.VAPIDPublicKey,
		WorkerTimeout:           cfg.Push.WorkerTimeout(),
		StatusTimeout:           cfg.Push.StatusTimeout(),
		KeyCacheTTL:             cfg.Push.KeyCacheTTL(),
		UnregisterOnUnsubscribe: cfg.Push.UnregisterOnUnsubscribe,
	})

	return coord, closerFunc(func() error {
		return errors.Join(inspector.Close(), rdb.Close())
	}), nil
}

func newEnqueuer(cfg *config.Config) (queue.Enqueuer, io.Closer, error) {
	client := queue.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	return client, client, nil
}

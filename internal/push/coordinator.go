package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultStatusTimeout bounds the worker wait of the mount-time status check.
const DefaultStatusTimeout = time.Second

const keyCacheEntry = "application_server_key"

// Config holds Coordinator settings.
type Config struct {
	// VAPIDPublicKey is the locally configured key. When empty the key is
	// fetched from the KeyProvider.
	VAPIDPublicKey string

	// WorkerTimeout bounds the worker wait of Subscribe and Unsubscribe.
	WorkerTimeout time.Duration

	// StatusTimeout bounds the worker wait of CheckStatus.
	StatusTimeout time.Duration

	// KeyCacheTTL expires the resolved key. Zero keeps it for the process lifetime.
	KeyCacheTTL time.Duration

	// UnregisterOnUnsubscribe also drops the gateway record on Unsubscribe.
	UnregisterOnUnsubscribe bool
}

// Coordinator orchestrates subscribe, unsubscribe and status checks against
// the platform and the notification gateway. Operations are serialized.
type Coordinator struct {
	mu sync.Mutex

	platform  Platform
	gate      *Gate
	keys      KeyProvider
	registrar Registrar
	machine   *Machine
	keyCache  *cache.Cache
	config    Config
}

// NewCoordinator creates a Coordinator in StateIdle.
func NewCoordinator(platform Platform, keys KeyProvider, registrar Registrar, cfg Config) *Coordinator {
	if cfg.WorkerTimeout <= 0 {
		cfg.WorkerTimeout = DefaultWorkerTimeout
	}
	if cfg.StatusTimeout <= 0 {
		cfg.StatusTimeout = DefaultStatusTimeout
	}

	ttl := cfg.KeyCacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	var registry WorkerRegistry
	if platform != nil {
		registry = platform.Workers()
	}

	return &Coordinator{
		platform:  platform,
		gate:      NewGate(registry),
		keys:      keys,
		registrar: registrar,
		machine:   NewMachine(),
		// No janitor: expired entries are ignored by Get.
		keyCache: cache.New(ttl, 0),
		config:   cfg,
	}
}

// Status returns the current subscription status.
func (c *Coordinator) Status() Status {
	return c.machine.Status()
}

// Watch registers for status change notifications.
func (c *Coordinator) Watch() (int, <-chan Status) {
	return c.machine.Watch()
}

// Unwatch stops notifications for a watcher returned by Watch.
func (c *Coordinator) Unwatch(id int) {
	c.machine.Unwatch(id)
}

// Subscribe creates a push subscription and registers it with the gateway.
// It is a no-op when already subscribed. Only the gateway's acknowledgement
// moves the status to StateSubscribed.
func (c *Coordinator) Subscribe(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current := c.machine.Status(); current.State == StateSubscribed {
		slog.Debug("already subscribed, skipping")
		return current, nil
	}

	if err := c.machine.Transition(StateCheckingSupport); err != nil {
		return c.machine.Status(), err
	}
	if c.platform == nil || !c.platform.SupportsPush() {
		return c.fail(ReasonUnsupported, errors.New("platform has no worker or push capability"))
	}

	// Only an explicit answer counts as a refusal; a failed request is transient.
	permission, err := c.platform.RequestPermission(ctx)
	if err != nil {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("requesting permission: %w", err))
	}
	if permission != PermissionGranted {
		return c.fail(ReasonPermissionDenied, fmt.Errorf("permission is %q", permission))
	}

	if err := c.machine.Transition(StateFetchingKey); err != nil {
		return c.machine.Status(), err
	}
	serverKey, pushErr := c.applicationServerKey(ctx)
	if pushErr != nil {
		return c.failWith(pushErr)
	}

	if err := c.machine.Transition(StateAwaitingWorker); err != nil {
		return c.machine.Status(), err
	}
	handle, ok := c.gate.Await(ctx, c.config.WorkerTimeout)
	if !ok {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("worker not ready within %s", c.config.WorkerTimeout))
	}

	if err := c.machine.Transition(StateSubscribing); err != nil {
		return c.machine.Status(), err
	}
	sub, err := handle.PushManager().Subscribe(ctx, SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: serverKey,
	})
	if err != nil {
		return c.fail(platformReason(err), fmt.Errorf("platform subscribe: %w", err))
	}

	record, err := NewRecord(sub)
	if err != nil {
		return c.fail(ReasonUnsupported, err)
	}

	if c.registrar == nil {
		return c.fail(ReasonRegistrarError, errors.New("no registrar configured"))
	}
	if err := c.registrar.Register(ctx, record); err != nil {
		return c.fail(ReasonRegistrarError, fmt.Errorf("registering subscription: %w", err))
	}

	if err := c.machine.Transition(StateSubscribed); err != nil {
		return c.machine.Status(), err
	}

	slog.Info("push subscription registered",
		"endpoint", record.Endpoint,
		"scope", handle.Scope(),
	)
	return c.machine.Status(), nil
}

// Unsubscribe removes the platform subscription if there is one. A missing
// subscription is not an error.
func (c *Coordinator) Unsubscribe(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.Transition(StateUnsubscribing); err != nil {
		return c.machine.Status(), err
	}
	if c.platform == nil || !c.platform.SupportsPush() {
		return c.fail(ReasonUnsupported, errors.New("platform has no worker or push capability"))
	}

	handle, ok := c.gate.Await(ctx, c.config.WorkerTimeout)
	if !ok {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("worker not ready within %s", c.config.WorkerTimeout))
	}

	sub, err := handle.PushManager().GetSubscription(ctx)
	if err != nil {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("reading subscription: %w", err))
	}

	if sub == nil {
		slog.Info("no push subscription to remove", "scope", handle.Scope())
		return c.settle(StateUnsubscribed)
	}

	endpoint := sub.Endpoint()
	if _, err := sub.Unsubscribe(ctx); err != nil {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("platform unsubscribe: %w", err))
	}

	if c.config.UnregisterOnUnsubscribe && c.registrar != nil {
		if err := c.registrar.Unregister(ctx, endpoint); err != nil {
			slog.Warn("failed to drop gateway subscription record",
				"endpoint", endpoint,
				"error", err,
			)
		}
	}

	slog.Info("push subscription removed", "endpoint", endpoint)
	return c.settle(StateUnsubscribed)
}

// CheckStatus reconciles the status with the platform's existing
// subscription without any remote write.
func (c *Coordinator) CheckStatus(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.Transition(StateCheckingSupport); err != nil {
		return c.machine.Status(), err
	}
	if c.platform == nil || !c.platform.SupportsPush() {
		return c.fail(ReasonUnsupported, errors.New("platform has no worker or push capability"))
	}

	handle, ok := c.gate.Await(ctx, c.config.StatusTimeout)
	if !ok {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("worker not ready within %s", c.config.StatusTimeout))
	}

	sub, err := handle.PushManager().GetSubscription(ctx)
	if err != nil {
		return c.fail(ReasonWorkerUnavailable, fmt.Errorf("reading subscription: %w", err))
	}

	if sub != nil {
		return c.settle(StateSubscribed)
	}
	return c.settle(StateUnsubscribed)
}

// applicationServerKey resolves the VAPID key from config or the KeyProvider
// and decodes it. The decoded key is cached.
func (c *Coordinator) applicationServerKey(ctx context.Context) ([]byte, *Error) {
	if cached, ok := c.keyCache.Get(keyCacheEntry); ok {
		return cached.([]byte), nil
	}

	raw := c.config.VAPIDPublicKey
	if raw == "" {
		if c.keys == nil {
			return nil, newError(ReasonInvalidKey, errors.New("no VAPID public key configured"))
		}

		fetched, err := c.keys.PublicKey(ctx)
		if err != nil {
			return nil, newError(ReasonRegistrarError, fmt.Errorf("fetching VAPID public key: %w", err))
		}
		if fetched == "" {
			return nil, newError(ReasonInvalidKey, errors.New("gateway returned an empty VAPID public key"))
		}
		raw = fetched
	}

	key, err := DecodeKey(raw)
	if err != nil {
		return nil, newError(ReasonInvalidKey, err)
	}

	c.keyCache.SetDefault(keyCacheEntry, key)
	return key, nil
}

func (c *Coordinator) settle(state State) (Status, error) {
	if err := c.machine.Transition(state); err != nil {
		return c.machine.Status(), err
	}
	return c.machine.Status(), nil
}

func (c *Coordinator) fail(reason Reason, err error) (Status, error) {
	return c.failWith(newError(reason, err))
}

func (c *Coordinator) failWith(pushErr *Error) (Status, error) {
	if err := c.machine.Fail(pushErr.Reason); err != nil {
		return c.machine.Status(), errors.Join(pushErr, err)
	}

	slog.Warn("push subscription operation failed",
		"reason", pushErr.Reason,
		"retryable", pushErr.Retryable(),
		"error", pushErr.Err,
	)
	return c.machine.Status(), pushErr
}

// platformReason maps a platform subscribe failure onto the taxonomy.
func platformReason(err error) Reason {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrInvalidKeyFormat), errors.Is(err, ErrKeyMismatch):
		return ReasonInvalidKey
	default:
		return ReasonWorkerUnavailable
	}
}

package push

import (
	"context"
	"errors"
)

// Names accepted by Subscription.Key.
const (
	KeyP256dh = "p256dh"
	KeyAuth   = "auth"
)

// ErrPermissionDenied is returned by a PushManager when the user refused
// notification permission.
var ErrPermissionDenied = errors.New("notification permission denied")

// ErrKeyMismatch is returned by a PushManager when a subscription already
// exists under a different application server key.
var ErrKeyMismatch = errors.New("subscription exists with a different application server key")

// Permission is the notification permission state reported by the platform.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

// Platform is the device-side capability surface the Coordinator depends on.
// Implementations live in infra/platform/.
type Platform interface {
	// SupportsPush reports whether the device has both a background worker and push capability.
	SupportsPush() bool

	// RequestPermission asks for notification permission and returns the resulting state.
	RequestPermission(ctx context.Context) (Permission, error)

	// Workers returns the worker registry, or nil when workers are unavailable.
	Workers() WorkerRegistry
}

// WorkerRegistry exposes the readiness signal of the background worker registration.
type WorkerRegistry interface {
	// Ready delivers a handle once the worker registration is active.
	// The channel is closed without a value when ctx ends first.
	Ready(ctx context.Context) <-chan WorkerHandle
}

// WorkerHandle is an active worker registration. It is obtained per operation
// and never cached, since the worker may be reinstalled in between.
type WorkerHandle interface {
	Scope() string
	PushManager() PushManager
}

// SubscribeOptions mirrors the options of a platform subscribe call.
type SubscribeOptions struct {
	UserVisibleOnly      bool
	ApplicationServerKey []byte
}

// PushManager issues and looks up push subscriptions for one worker scope.
type PushManager interface {
	Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error)

	// GetSubscription returns nil, nil when there is no subscription.
	GetSubscription(ctx context.Context) (Subscription, error)
}

// Subscription is a platform-issued push subscription.
type Subscription interface {
	Endpoint() string

	// Key returns the raw key buffer for KeyP256dh or KeyAuth, nil if unknown.
	Key(name string) []byte

	// Unsubscribe removes the subscription and reports whether one was removed.
	Unsubscribe(ctx context.Context) (bool, error)
}

// KeyProvider serves the application server's VAPID public key.
type KeyProvider interface {
	PublicKey(ctx context.Context) (string, error)
}

// Registrar records push subscriptions on the notification gateway.
type Registrar interface {
	Register(ctx context.Context, record Record) error
	Unregister(ctx context.Context, endpoint string) error
}

package platform

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"taskpush/internal/push"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const authSecretLength = 16

var _ push.PushManager = (*RedisPushManager)(nil)

// hashClient is the part of the Redis client the push manager uses.
type hashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisPushManager issues push subscriptions for one worker scope and keeps
// them in a Redis hash so they survive restarts of the client.
type RedisPushManager struct {
	client         hashClient
	scope          string
	pushServiceURL string
}

// NewRedisPushManager creates a push manager. Endpoints are minted under pushServiceURL.
func NewRedisPushManager(client *redis.Client, scope, pushServiceURL string) *RedisPushManager {
	return newPushManager(client, scope, pushServiceURL)
}

func newPushManager(client hashClient, scope, pushServiceURL string) *RedisPushManager {
	return &RedisPushManager{
		client:         client,
		scope:          scope,
		pushServiceURL: strings.TrimRight(pushServiceURL, "/"),
	}
}

func (m *RedisPushManager) key() string {
	return "taskpush:subscription:" + m.scope
}

// Subscribe returns the scope's subscription, creating it if needed.
func (m *RedisPushManager) Subscribe(ctx context.Context, opts push.SubscribeOptions) (push.Subscription, error) {
	if !opts.UserVisibleOnly {
		return nil, fmt.Errorf("%w: silent push is not allowed", push.ErrPermissionDenied)
	}

	if _, err := ecdh.P256().NewPublicKey(opts.ApplicationServerKey); err != nil {
		return nil, fmt.Errorf("%w: application server key is not a P-256 point", push.ErrInvalidKeyFormat)
	}

	existing, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !bytes.Equal(existing.serverKey, opts.ApplicationServerKey) {
			return nil, push.ErrKeyMismatch
		}
		return existing, nil
	}

	clientKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating client key: %w", err)
	}

	auth := make([]byte, authSecretLength)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("generating auth secret: %w", err)
	}

	sub := &redisSubscription{
		manager:   m,
		endpoint:  m.pushServiceURL + "/" + uuid.NewString(),
		p256dh:    clientKey.PublicKey().Bytes(),
		auth:      auth,
		serverKey: opts.ApplicationServerKey,
	}

	enc := base64.RawURLEncoding
	if err := m.client.HSet(ctx, m.key(),
		"endpoint", sub.endpoint,
		"p256dh", enc.EncodeToString(sub.p256dh),
		"auth", enc.EncodeToString(sub.auth),
		"server_key", enc.EncodeToString(sub.serverKey),
	).Err(); err != nil {
		return nil, fmt.Errorf("storing subscription: %w", err)
	}

	return sub, nil
}

// GetSubscription returns the scope's subscription, or nil when there is none.
func (m *RedisPushManager) GetSubscription(ctx context.Context) (push.Subscription, error) {
	sub, err := m.load(ctx)
	if err != nil || sub == nil {
		return nil, err
	}
	return sub, nil
}

func (m *RedisPushManager) load(ctx context.Context) (*redisSubscription, error) {
	fields, err := m.client.HGetAll(ctx, m.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("loading subscription: %w", err)
	}
	if fields["endpoint"] == "" {
		return nil, nil
	}

	sub := &redisSubscription{manager: m, endpoint: fields["endpoint"]}
	enc := base64.RawURLEncoding
	for name, dst := range map[string]*[]byte{
		"p256dh":     &sub.p256dh,
		"auth":       &sub.auth,
		"server_key": &sub.serverKey,
	} {
		if *dst, err = enc.DecodeString(fields[name]); err != nil {
			return nil, fmt.Errorf("decoding stored %s: %w", name, err)
		}
	}
	return sub, nil
}

type redisSubscription struct {
	manager   *RedisPushManager
	endpoint  string
	p256dh    []byte
	auth      []byte
	serverKey []byte
}

func (s *redisSubscription) Endpoint() string { return s.endpoint }

func (s *redisSubscription) Key(name string) []byte {
	switch name {
	case push.KeyP256dh:
		return s.p256dh
	case push.KeyAuth:
		return s.auth
	default:
		return nil
	}
}

// Unsubscribe removes the subscription if it is still the current one.
func (s *redisSubscription) Unsubscribe(ctx context.Context) (bool, error) {
	current, err := s.manager.load(ctx)
	if err != nil {
		return false, err
	}
	if current == nil || current.endpoint != s.endpoint {
		return false, nil
	}

	if err := s.manager.client.Del(ctx, s.manager.key()).Err(); err != nil {
		return false, fmt.Errorf("removing subscription: %w", err)
	}
	return true, nil
}

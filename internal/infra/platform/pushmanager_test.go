package platform

import (
	"context"
	"strings"
	"testing"

	"taskpush/internal/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushManager_SubscribeCreatesAndPersists(t *testing.T) {
	store := newFakeHash()
	m := newPushManager(store, "/", "https://push.example.com/send/")
	key := serverKey(t)

	sub, err := m.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: key})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sub.Endpoint(), "https://push.example.com/send/"))
	assert.Len(t, sub.Key(push.KeyP256dh), 65)
	assert.Equal(t, byte(0x04), sub.Key(push.KeyP256dh)[0])
	assert.Len(t, sub.Key(push.KeyAuth), 16)
	assert.Nil(t, sub.Key("unknown"))

	// A fresh manager over the same store sees the subscription.
	again, err := newPushManager(store, "/", "https://push.example.com/send").GetSubscription(context.Background())
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, sub.Endpoint(), again.Endpoint())
	assert.Equal(t, sub.Key(push.KeyP256dh), again.Key(push.KeyP256dh))
	assert.Equal(t, sub.Key(push.KeyAuth), again.Key(push.KeyAuth))

	record, err := push.NewRecord(again)
	require.NoError(t, err)
	assert.Equal(t, sub.Endpoint(), record.Endpoint)
}

func TestPushManager_SubscribeIsIdempotentPerKey(t *testing.T) {
	m := newPushManager(newFakeHash(), "/", "https://push.example.com")
	key := serverKey(t)
	opts := push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: key}

	first, err := m.Subscribe(context.Background(), opts)
	require.NoError(t, err)
	second, err := m.Subscribe(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first.Endpoint(), second.Endpoint())

	_, err = m.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: serverKey(t)})
	assert.ErrorIs(t, err, push.ErrKeyMismatch)
}

func TestPushManager_SubscribeRejects(t *testing.T) {
	m := newPushManager(newFakeHash(), "/", "https://push.example.com")

	_, err := m.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: false, ApplicationServerKey: serverKey(t)})
	assert.ErrorIs(t, err, push.ErrPermissionDenied)

	notOnCurve := make([]byte, 65)
	notOnCurve[0] = 0x04
	_, err = m.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: notOnCurve})
	assert.ErrorIs(t, err, push.ErrInvalidKeyFormat)
}

func TestPushManager_ScopesAreIndependent(t *testing.T) {
	store := newFakeHash()
	root := newPushManager(store, "/", "https://push.example.com")
	app := newPushManager(store, "/app", "https://push.example.com")

	_, err := root.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: serverKey(t)})
	require.NoError(t, err)

	sub, err := app.GetSubscription(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestPushManager_Unsubscribe(t *testing.T) {
	m := newPushManager(newFakeHash(), "/", "https://push.example.com")

	sub, err := m.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: serverKey(t)})
	require.NoError(t, err)

	removed, err := sub.Unsubscribe(context.Background())
	require.NoError(t, err)
	assert.True(t, removed)

	current, err := m.GetSubscription(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)

	removed, err = sub.Unsubscribe(context.Background())
	require.NoError(t, err)
	assert.False(t, removed, "second unsubscribe finds nothing")
}

func TestPushManager_RedisErrors(t *testing.T) {
	store := newFakeHash()
	store.err = errRedisDown
	m := newPushManager(store, "/", "https://push.example.com")

	_, err := m.GetSubscription(context.Background())
	assert.ErrorIs(t, err, errRedisDown)

	_, err = m.Subscribe(context.Background(), push.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: serverKey(t)})
	assert.ErrorIs(t, err, errRedisDown)
}

func TestPushManager_CorruptStoredKey(t *testing.T) {
	store := newFakeHash()
	m := newPushManager(store, "/", "https://push.example.com")
	store.hashes[m.key()] = map[string]string{"endpoint": "https://push.example.com/x", "p256dh": "***"}

	_, err := m.GetSubscription(context.Background())
	assert.Error(t, err)
}

package subscription

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"sync"
	"time"
)

var errStoreDown = errors.New("store down")

var (
	validP256dh = base64.StdEncoding.EncodeToString(append([]byte{0x04}, bytes.Repeat([]byte{0x11}, 64)...))
	validAuth   = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x22}, 16))
)

func validRequest() *SubscribeRequest {
	return &SubscribeRequest{
		Endpoint: "https://push.example.com/send/abc",
		Keys:     Keys{P256dh: validP256dh, Auth: validAuth},
	}
}

type memoryStore struct {
	mu        sync.Mutex
	subs      map[string]*Subscription
	nextID    int
	upsertErr error
	deleteErr error
	listErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{subs: make(map[string]*Subscription)}
}

func (m *memoryStore) Upsert(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}

	now := time.Now()
	for _, existing := range m.subs {
		if existing.UserID == sub.UserID && existing.Endpoint == sub.Endpoint {
			existing.P256dh = sub.P256dh
			existing.Auth = sub.Auth
			existing.UpdatedAt = now
			*sub = *existing
			return nil
		}
	}

	m.nextID++
	sub.ID = string(rune('a' + m.nextID - 1))
	sub.CreatedAt = now
	sub.UpdatedAt = now
	stored := *sub
	m.subs[sub.ID] = &stored
	return nil
}

func (m *memoryStore) DeleteByEndpoint(_ context.Context, userID, endpoint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	for id, sub := range m.subs {
		if sub.UserID == userID && sub.Endpoint == endpoint {
			delete(m.subs, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) ListByUser(_ context.Context, userID string, limit int) ([]*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*Subscription
	for _, sub := range m.subs {
		if sub.UserID == userID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) put(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
}

func (m *memoryStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type fakeLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (f *fakeLimiter) Allow(context.Context, string) (bool, error) {
	f.calls++
	return f.allowed, f.err
}

package push

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeHandle struct {
	scope string
	pm    PushManager
}

func (h *fakeHandle) Scope() string            { return h.scope }
func (h *fakeHandle) PushManager() PushManager { return h.pm }

// fakeRegistry becomes ready after delay, or never when never is set.
type fakeRegistry struct {
	handle WorkerHandle
	delay  time.Duration
	never  bool
}

func (r *fakeRegistry) Ready(ctx context.Context) <-chan WorkerHandle {
	ch := make(chan WorkerHandle, 1)
	go func() {
		defer close(ch)
		if r.never {
			<-ctx.Done()
			return
		}
		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			ch <- r.handle
		case <-ctx.Done():
		}
	}()
	return ch
}

type fakeSubscription struct {
	owner    *fakePushManager
	endpoint string
	p256dh   []byte
	auth     []byte
	unsubErr error
}

func (s *fakeSubscription) Endpoint() string { return s.endpoint }

func (s *fakeSubscription) Key(name string) []byte {
	switch name {
	case KeyP256dh:
		return s.p256dh
	case KeyAuth:
		return s.auth
	default:
		return nil
	}
}

func (s *fakeSubscription) Unsubscribe(context.Context) (bool, error) {
	if s.unsubErr != nil {
		return false, s.unsubErr
	}
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	s.owner.unsubscribeCalls++
	removed := s.owner.current == s
	s.owner.current = nil
	return removed, nil
}

type fakePushManager struct {
	mu               sync.Mutex
	current          *fakeSubscription
	subscribeErr     error
	getErr           error
	subscribeCalls   int
	unsubscribeCalls int
	lastOpts         SubscribeOptions
}

func (m *fakePushManager) Subscribe(_ context.Context, opts SubscribeOptions) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeCalls++
	m.lastOpts = opts
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	if m.current == nil {
		m.current = newFakeSubscription(m)
	}
	return m.current, nil
}

func (m *fakePushManager) GetSubscription(context.Context) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.current == nil {
		return nil, nil
	}
	return m.current, nil
}

func newFakeSubscription(owner *fakePushManager) *fakeSubscription {
	p256dh := make([]byte, 65)
	p256dh[0] = 0x04
	for i := 1; i < len(p256dh); i++ {
		p256dh[i] = byte(i)
	}
	return &fakeSubscription{
		owner:    owner,
		endpoint: "https://push.example.com/send/abc123",
		p256dh:   p256dh,
		auth:     []byte("0123456789abcdef"),
	}
}

type fakePlatform struct {
	supported  bool
	permission Permission
	permErr    error
	registry   WorkerRegistry
}

func (p *fakePlatform) SupportsPush() bool { return p.supported }

func (p *fakePlatform) RequestPermission(context.Context) (Permission, error) {
	return p.permission, p.permErr
}

func (p *fakePlatform) Workers() WorkerRegistry { return p.registry }

type fakeKeyProvider struct {
	mu    sync.Mutex
	key   string
	err   error
	calls int
}

func (k *fakeKeyProvider) PublicKey(context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls++
	return k.key, k.err
}

type fakeRegistrar struct {
	mu           sync.Mutex
	err          error
	unregErr     error
	records      []Record
	unregistered []string
	calls        int
}

func (r *fakeRegistrar) Register(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRegistrar) Unregister(_ context.Context, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregistered = append(r.unregistered, endpoint)
	return r.unregErr
}

var errGatewayDown = errors.New("gateway down")

package subscription

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"

	"taskpush/internal/common"
)

const (
	p256dhLength = 65
	authLength   = 16

	maxListed = 50
)

// Service implements the key provider and registrar.
// Register flow: validate → check rate limit → upsert.
type Service struct {
	store       Store
	rateLimiter SubscriberRateLimiter
	publicKey   string
	metrics     *Metrics
}

// NewService creates a new registrar service. publicKey is the VAPID public
// key handed to clients; rateLimiter and metrics may be nil.
func NewService(store Store, rateLimiter SubscriberRateLimiter, publicKey string, metrics *Metrics) *Service {
	return &Service{
		store:       store,
		rateLimiter: rateLimiter,
		publicKey:   publicKey,
		metrics:     metrics,
	}
}

// PublicKey returns the configured VAPID public key.
func (s *Service) PublicKey(_ context.Context) (string, error) {
	if s.publicKey == "" {
		return "", common.NewUnavailableError("vapid public key not configured")
	}
	return s.publicKey, nil
}

// Register records a push subscription for the user. Repeated registrations
// of the same endpoint refresh its keys.
func (s *Service) Register(ctx context.Context, userID string, req *SubscribeRequest) (*StatusResponse, error) {
	if err := validateSubscribeRequest(req); err != nil {
		s.metrics.registered("invalid")
		return nil, err
	}

	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.Allow(ctx, userID)
		if err != nil {
			// Fail open: don't block registrations when Redis is down
			slog.Error("rate limit check failed, proceeding without limit", "user_id", userID, "error", err)
		} else if !allowed {
			s.metrics.registered("rate_limited")
			return nil, common.NewRateLimitError(userID)
		}
	}

	sub := &Subscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		s.metrics.registered("error")
		return nil, fmt.Errorf("saving subscription: %w", err)
	}

	s.metrics.registered("ok")
	slog.Info("push subscription registered",
		"id", sub.ID,
		"user_id", userID,
		"endpoint", sub.Endpoint,
	)

	return &StatusResponse{Status: StatusSubscribed}, nil
}

// Unregister drops a user's subscription. Unknown endpoints are not an error.
func (s *Service) Unregister(ctx context.Context, userID, endpoint string) (*StatusResponse, error) {
	if endpoint == "" {
		return nil, common.NewValidationError("endpoint is required")
	}

	removed, err := s.store.DeleteByEndpoint(ctx, userID, endpoint)
	if err != nil {
		return nil, fmt.Errorf("deleting subscription: %w", err)
	}

	if removed {
		s.metrics.unregistered()
		slog.Info("push subscription removed", "user_id", userID, "endpoint", endpoint)
	}

	return &StatusResponse{Status: StatusUnsubscribed}, nil
}

// List returns the endpoints registered for the user, most recently
// refreshed first. Keys are not included.
func (s *Service) List(ctx context.Context, userID string) (*ListResponse, error) {
	subs, err := s.store.ListByUser(ctx, userID, maxListed)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	resp := &ListResponse{Subscriptions: make([]RegisteredEndpoint, len(subs))}
	for i, sub := range subs {
		resp.Subscriptions[i] = RegisteredEndpoint{
			Endpoint:  sub.Endpoint,
			CreatedAt: sub.CreatedAt,
			UpdatedAt: sub.UpdatedAt,
		}
	}
	return resp, nil
}

func validateSubscribeRequest(req *SubscribeRequest) error {
	endpoint, err := url.Parse(req.Endpoint)
	if err != nil || (endpoint.Scheme != "https" && endpoint.Scheme != "http") || endpoint.Host == "" {
		return common.NewValidationError("endpoint must be an absolute http(s) URL")
	}

	p256dh, err := base64.StdEncoding.DecodeString(req.Keys.P256dh)
	if err != nil || len(p256dh) != p256dhLength || p256dh[0] != 0x04 {
		return common.NewValidationError("keys.p256dh must be a base64 uncompressed P-256 point")
	}

	auth, err := base64.StdEncoding.DecodeString(req.Keys.Auth)
	if err != nil || len(auth) != authLength {
		return common.NewValidationError(fmt.Sprintf("keys.auth must be %d base64-encoded bytes", authLength))
	}

	return nil
}

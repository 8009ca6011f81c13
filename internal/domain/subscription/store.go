package subscription

import "context"

// Store defines the contract for persisting push subscriptions.
// Implementations live in infra/store/ (e.g., Supabase).
type Store interface {
	// Upsert inserts the subscription or refreshes the keys of an existing
	// (user, endpoint) pair.
	Upsert(ctx context.Context, sub *Subscription) error

	// DeleteByEndpoint removes a user's subscription and reports whether one existed.
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) (bool, error)

	// ListByUser returns a user's subscriptions, most recently refreshed first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Subscription, error)
}

// SubscriberRateLimiter limits registrar writes per subscriber.
// Implementations live in infra/ratelimit/.
type SubscriberRateLimiter interface {
	// Allow reports whether the subscriber may perform another write.
	Allow(ctx context.Context, subscriber string) (bool, error)
}

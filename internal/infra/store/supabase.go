package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskpush/internal/domain/subscription"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const tableName = "push_subscriptions"

var _ subscription.Store = (*SupabaseStore)(nil)

// SupabaseStore implements subscription.Store using the Supabase Go SDK.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed subscription store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// supabaseRow is the internal representation for Supabase PostgREST insert/update.
type supabaseRow struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id"`
	Endpoint  string `json:"endpoint"`
	P256dh    string `json:"p256dh"`
	Auth      string `json:"auth"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Upsert inserts a subscription or refreshes the keys of the existing
// (user_id, endpoint) row.
func (s *SupabaseStore) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	row := supabaseRow{
		UserID:    sub.UserID,
		Endpoint:  sub.Endpoint,
		P256dh:    sub.P256dh,
		Auth:      sub.Auth,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	data, _, err := s.client.From(tableName).Insert(row, true, "user_id,endpoint", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("upserting subscription: %w", err)
	}

	var results []supabaseRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing upsert response: %w", err)
	}

	if len(results) > 0 {
		stored := rowToSubscription(&results[0])
		sub.ID = stored.ID
		sub.CreatedAt = stored.CreatedAt
		sub.UpdatedAt = stored.UpdatedAt
	}

	return nil
}

// DeleteByEndpoint removes a user's subscription and reports whether a row existed.
func (s *SupabaseStore) DeleteByEndpoint(ctx context.Context, userID, endpoint string) (bool, error) {
	data, _, err := s.client.From(tableName).
		Delete("representation", "").
		Eq("user_id", userID).
		Eq("endpoint", endpoint).
		Execute()
	if err != nil {
		return false, fmt.Errorf("deleting subscription by endpoint: %w", err)
	}

	var rows []supabaseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return false, fmt.Errorf("parsing delete response: %w", err)
	}

	return len(rows) > 0, nil
}

// ListByUser retrieves a user's subscriptions, most recently refreshed first.
func (s *SupabaseStore) ListByUser(ctx context.Context, userID string, limit int) ([]*subscription.Subscription, error) {
	if limit <= 0 {
		limit = 50
	}

	data, _, err := s.client.From(tableName).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Range(0, limit-1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions for %s: %w", userID, err)
	}

	return parseRows(data)
}

func parseRows(data []byte) ([]*subscription.Subscription, error) {
	var rows []supabaseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing subscriptions: %w", err)
	}

	subs := make([]*subscription.Subscription, len(rows))
	for i := range rows {
		subs[i] = rowToSubscription(&rows[i])
	}
	return subs, nil
}

// rowToSubscription converts a supabaseRow to a Subscription.
func rowToSubscription(row *supabaseRow) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:       row.ID,
		UserID:   row.UserID,
		Endpoint: row.Endpoint,
		P256dh:   row.P256dh,
		Auth:     row.Auth,
	}

	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			sub.CreatedAt = t
		}
	}
	if row.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.UpdatedAt); err == nil {
			sub.UpdatedAt = t
		}
	}

	return sub
}

package subscription

import "time"

// Registrar response statuses.
const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
)

// Subscription is a persisted Web Push subscription for one user and device.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Keys holds subscription keys in standard base64.
type Keys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// SubscribeRequest is the registrar payload sent by clients.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     Keys   `json:"keys"`
}

// UnsubscribeRequest identifies the subscription to drop.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// StatusResponse is the registrar acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// PublicKeyResponse is the key provider response.
type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// RegisteredEndpoint is a stored subscription as shown to its owner.
type RegisteredEndpoint struct {
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse lists a user's registered endpoints.
type ListResponse struct {
	Subscriptions []RegisteredEndpoint `json:"subscriptions"`
}

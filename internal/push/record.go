package push

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Record is the wire form of a push subscription sent to the Registrar.
type Record struct {
	Endpoint string     `json:"endpoint"`
	Keys     RecordKeys `json:"keys"`
}

// RecordKeys holds the subscription keys in standard base64.
type RecordKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// NewRecord reads endpoint and key buffers back from a platform subscription.
func NewRecord(sub Subscription) (Record, error) {
	if sub == nil {
		return Record{}, errors.New("no subscription")
	}

	endpoint := sub.Endpoint()
	if endpoint == "" {
		return Record{}, errors.New("subscription has no endpoint")
	}

	p256dh := sub.Key(KeyP256dh)
	auth := sub.Key(KeyAuth)
	if len(p256dh) == 0 || len(auth) == 0 {
		return Record{}, fmt.Errorf("subscription %s is missing key material", endpoint)
	}

	return Record{
		Endpoint: endpoint,
		Keys: RecordKeys{
			P256dh: base64.StdEncoding.EncodeToString(p256dh),
			Auth:   base64.StdEncoding.EncodeToString(auth),
		},
	}, nil
}

// Package vapid generates and checks the application server key pair
// handed to push subscribers.
package vapid

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"taskpush/internal/push"
)

// Key is a VAPID key pair in URL-safe base64 without padding. PublicKey
// carries the raw x||y coordinates, PrivateKey the 32-byte scalar.
type Key struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// Generate creates a new P-256 key pair.
func Generate() (Key, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return Key{}, fmt.Errorf("generating P-256 key: %w", err)
	}

	// Bytes() is the uncompressed point; drop the 0x04 prefix.
	point := priv.PublicKey().Bytes()

	return Key{
		PublicKey:  push.EncodeKey(point[1:]),
		PrivateKey: base64.RawURLEncoding.EncodeToString(priv.Bytes()),
	}, nil
}

// ValidatePublic checks that a public key decodes to a point on P-256.
func ValidatePublic(publicKey string) error {
	point, err := push.DecodeKey(publicKey)
	if err != nil {
		return err
	}
	if _, err := ecdh.P256().NewPublicKey(point); err != nil {
		return fmt.Errorf("%w: not a P-256 point", push.ErrInvalidKeyFormat)
	}
	return nil
}

// Validate checks a key pair. An empty private key is accepted since only
// the public half is served; a present private key must match it.
func Validate(k Key) error {
	if err := ValidatePublic(k.PublicKey); err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	if k.PrivateKey == "" {
		return nil
	}

	scalar, err := base64.RawURLEncoding.DecodeString(trimPadding(k.PrivateKey))
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	priv, err := ecdh.P256().NewPrivateKey(scalar)
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}

	if push.EncodeKey(priv.PublicKey().Bytes()[1:]) != normalize(k.PublicKey) {
		return errors.New("private key does not match public key")
	}
	return nil
}

func trimPadding(s string) string {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	return s
}

// normalize re-encodes a public key in the canonical URL-safe unpadded form.
func normalize(publicKey string) string {
	point, err := push.DecodeKey(publicKey)
	if err != nil {
		return publicKey
	}
	return push.EncodeKey(point[1:])
}

package push

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKeyFormat is returned when a VAPID public key cannot be decoded
// into an uncompressed P-256 point.
var ErrInvalidKeyFormat = errors.New("invalid key format")

const (
	// RawKeyLength is the length of the x||y coordinates carried by a VAPID public key.
	RawKeyLength = 64

	// DecodedKeyLength is the length of the application server key handed to the push manager.
	DecodedKeyLength = RawKeyLength + 1

	// uncompressedPoint marks an uncompressed EC point.
	uncompressedPoint = 0x04
)

var urlSafeAlphabet = strings.NewReplacer("-", "+", "_", "/")

// DecodeKey converts a URL-safe base64 VAPID public key (padding optional)
// into the 65-byte uncompressed point layout expected by PushManager.Subscribe.
func DecodeKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKeyFormat)
	}

	normalized := urlSafeAlphabet.Replace(raw)
	if rem := len(normalized) % 4; rem != 0 {
		normalized += strings.Repeat("=", 4-rem)
	}

	data, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}

	if len(data) != RawKeyLength {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrInvalidKeyFormat, len(data), RawKeyLength)
	}

	key := make([]byte, 0, DecodedKeyLength)
	key = append(key, uncompressedPoint)
	return append(key, data...), nil
}

// EncodeKey is the inverse of DecodeKey for raw x||y bytes: URL-safe base64 without padding.
func EncodeKey(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

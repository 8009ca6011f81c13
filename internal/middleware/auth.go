package middleware

import (
	"crypto/subtle"
	"log/slog"

	"taskpush/internal/common"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the registrar API key.
const APIKeyHeader = "X-API-Key"

// Auth returns middleware that validates the X-API-Key header against configured keys.
// With no keys configured every request is rejected.
func Auth(validKeys []string) gin.HandlerFunc {
	if len(validKeys) == 0 {
		slog.Warn("no API keys configured, registrar routes will reject all requests")
	}

	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			common.HandleError(c, common.NewUnauthorizedError("missing "+APIKeyHeader+" header"))
			c.Abort()
			return
		}

		if !isValidKey(apiKey, validKeys) {
			slog.Warn("rejected request with invalid API key",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"request_id", GetRequestID(c),
			)
			common.HandleError(c, common.NewUnauthorizedError("invalid API key"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// isValidKey checks the provided key against the list of valid keys using constant-time comparison.
func isValidKey(key string, validKeys []string) bool {
	for _, valid := range validKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return true
		}
	}
	return false
}

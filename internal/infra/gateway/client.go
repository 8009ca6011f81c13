package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskpush/internal/push"
)

// Header names understood by the gateway.
const (
	APIKeyHeader = "X-API-Key"
	UserIDHeader = "X-User-ID"
)

const statusSubscribed = "subscribed"

var (
	_ push.KeyProvider = (*Client)(nil)
	_ push.Registrar   = (*Client)(nil)
)

// Client talks to the notification gateway's key provider and registrar.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// New creates a gateway client. apiKey and userID identify the caller on
// registrar requests.
func New(baseURL, apiKey, userID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PublicKey fetches the VAPID public key.
func (c *Client) PublicKey(ctx context.Context) (string, error) {
	var resp struct {
		PublicKey string `json:"public_key"`
	}
	if err := c.get(ctx, "/notifications/vapid-public-key", &resp); err != nil {
		return "", fmt.Errorf("gateway.PublicKey: %w", err)
	}
	return resp.PublicKey, nil
}

// Register records a push subscription for the configured user.
func (c *Client) Register(ctx context.Context, record push.Record) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.post(ctx, "/notifications/subscribe", record, &resp); err != nil {
		return fmt.Errorf("gateway.Register: %w", err)
	}
	if resp.Status != statusSubscribed {
		return fmt.Errorf("gateway.Register: unexpected status %q", resp.Status)
	}
	return nil
}

// Unregister drops the server record of a push subscription.
func (c *Client) Unregister(ctx context.Context, endpoint string) error {
	body := struct {
		Endpoint string `json:"endpoint"`
	}{Endpoint: endpoint}

	if err := c.post(ctx, "/notifications/unsubscribe", body, nil); err != nil {
		return fmt.Errorf("gateway.Unregister: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if c.userID != "" {
		req.Header.Set(UserIDHeader, c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// readHTTPError extracts the message of the gateway's error envelope.
func readHTTPError(resp *http.Response) error {
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
	}

	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return &HTTPError{StatusCode: resp.StatusCode, Message: envelope.Error.Message}
	}
	if msg := strings.TrimSpace(string(respBody)); msg != "" {
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}

package subscription

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/notifications")
	NewHandler(svc).RegisterRoutes(group, group)
	return r
}

func do(r http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func subscribeBody(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(validRequest())
	require.NoError(t, err)
	return string(b)
}

func TestHandler_PublicKey(t *testing.T) {
	r := newTestRouter(NewService(newMemoryStore(), nil, "BPublic-key_", nil))

	w := do(r, http.MethodGet, "/notifications/vapid-public-key", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"BPublic-key_"}`, w.Body.String())
}

func TestHandler_PublicKeyUnconfigured(t *testing.T) {
	r := newTestRouter(NewService(newMemoryStore(), nil, "", nil))

	w := do(r, http.MethodGet, "/notifications/vapid-public-key", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_Subscribe(t *testing.T) {
	store := newMemoryStore()
	r := newTestRouter(NewService(store, nil, "", nil))

	w := do(r, http.MethodPost, "/notifications/subscribe", "user-1", subscribeBody(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"subscribed"}`, w.Body.String())
	assert.Equal(t, 1, store.len())
}

func TestHandler_SubscribeErrors(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		body   string
		code   int
	}{
		{"missing user", "", `{"endpoint":"https://push.example.com/x","keys":{"p256dh":"a","auth":"b"}}`, http.StatusUnauthorized},
		{"malformed json", "user-1", `{"endpoint":`, http.StatusBadRequest},
		{"missing keys", "user-1", `{"endpoint":"https://push.example.com/x"}`, http.StatusBadRequest},
		{"invalid keys", "user-1", `{"endpoint":"https://push.example.com/x","keys":{"p256dh":"a","auth":"b"}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			r := newTestRouter(NewService(store, nil, "", nil))

			w := do(r, http.MethodPost, "/notifications/subscribe", tt.userID, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Zero(t, store.len())
		})
	}
}

func TestHandler_SubscribeStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.upsertErr = errStoreDown
	r := newTestRouter(NewService(store, nil, "", nil))

	w := do(r, http.MethodPost, "/notifications/subscribe", "user-1", subscribeBody(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), errStoreDown.Error())
}

func TestHandler_SubscribeRateLimited(t *testing.T) {
	r := newTestRouter(NewService(newMemoryStore(), &fakeLimiter{allowed: false}, "", nil))

	w := do(r, http.MethodPost, "/notifications/subscribe", "user-1", subscribeBody(t))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHandler_Unsubscribe(t *testing.T) {
	store := newMemoryStore()
	r := newTestRouter(NewService(store, nil, "", nil))

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/notifications/subscribe", "user-1", subscribeBody(t)).Code)

	body := `{"endpoint":"` + validRequest().Endpoint + `"}`
	w := do(r, http.MethodPost, "/notifications/unsubscribe", "user-1", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"unsubscribed"}`, w.Body.String())
	assert.Zero(t, store.len())

	w = do(r, http.MethodPost, "/notifications/unsubscribe", "user-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_List(t *testing.T) {
	store := newMemoryStore()
	r := newTestRouter(NewService(store, nil, "", nil))

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/notifications/subscribe", "user-1", subscribeBody(t)).Code)

	w := do(r, http.MethodGet, "/notifications/subscriptions", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Subscriptions, 1)
	assert.Equal(t, validRequest().Endpoint, resp.Subscriptions[0].Endpoint)
	assert.NotContains(t, w.Body.String(), validP256dh)

	w = do(r, http.MethodGet, "/notifications/subscriptions", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

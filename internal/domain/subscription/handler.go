package subscription

import (
	"log/slog"
	"net/http"

	"taskpush/internal/common"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the subscribing user's identity.
const UserIDHeader = "X-User-ID"

// Handler handles HTTP requests for the key provider and registrar.
type Handler struct {
	service *Service
}

// NewHandler creates a new subscription handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PublicKey handles GET /notifications/vapid-public-key
func (h *Handler) PublicKey(c *gin.Context) {
	key, err := h.service.PublicKey(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicKeyResponse{PublicKey: key})
}

// Subscribe handles POST /notifications/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Register(c.Request.Context(), userID, &req)
	if err != nil {
		slog.Error("register subscription failed",
			"error", err,
			"user_id", userID,
			"endpoint", req.Endpoint,
		)
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Unsubscribe handles POST /notifications/unsubscribe
func (h *Handler) Unsubscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Unregister(c.Request.Context(), userID, req.Endpoint)
	if err != nil {
		slog.Error("unregister subscription failed",
			"error", err,
			"user_id", userID,
			"endpoint", req.Endpoint,
		)
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles GET /notifications/subscriptions
func (h *Handler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	resp, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		slog.Error("list subscriptions failed", "error", err, "user_id", userID)
		common.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the key provider on public and the registrar on protected.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/vapid-public-key", h.PublicKey)
	protected.POST("/subscribe", h.Subscribe)
	protected.POST("/unsubscribe", h.Unsubscribe)
	protected.GET("/subscriptions", h.List)
}

func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		common.HandleError(c, common.NewUnauthorizedError("missing "+UserIDHeader+" header"))
		return "", false
	}
	return userID, true
}

package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Worker event task types.
const (
	TaskTypePushReceived      = "push:received"
	TaskTypeNotificationClick = "notification:click"
)

// PushReceivedPayload carries a raw inbound push payload. Payload is
// arbitrary bytes from the producer and need not be JSON.
type PushReceivedPayload struct {
	Payload []byte `json:"payload,omitempty"`
}

// NotificationClickPayload carries the clicked notification.
type NotificationClickPayload struct {
	Notification Notification `json:"notification"`
}

// NewPushReceivedTask creates a task delivering a push payload to the worker.
func NewPushReceivedTask(payload []byte) (*asynq.Task, error) {
	data, err := json.Marshal(PushReceivedPayload{Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshaling push payload: %w", err)
	}
	return asynq.NewTask(TaskTypePushReceived, data), nil
}

// NewNotificationClickTask creates a task delivering a notification interaction to the worker.
func NewNotificationClickTask(n Notification) (*asynq.Task, error) {
	data, err := json.Marshal(NotificationClickPayload{Notification: n})
	if err != nil {
		return nil, fmt.Errorf("marshaling click payload: %w", err)
	}
	return asynq.NewTask(TaskTypeNotificationClick, data), nil
}

// Register binds the handler to the worker's task mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypePushReceived, h.processPush)
	mux.HandleFunc(TaskTypeNotificationClick, h.processClick)
}

// processPush never fails: a malformed envelope is rendered with defaults.
func (h *Handler) processPush(ctx context.Context, task *asynq.Task) error {
	var p PushReceivedPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		p.Payload = nil
	}
	h.OnPush(ctx, p.Payload)
	return nil
}

func (h *Handler) processClick(ctx context.Context, task *asynq.Task) error {
	var p NotificationClickPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		// Navigation does not depend on the payload.
		p = NotificationClickPayload{}
	}
	return h.OnNotificationClick(ctx, p.Notification)
}

package delivery

import (
	"context"
	"fmt"
	"log/slog"
)

// Displayer shows and closes notifications on the device.
// Implementations live in infra/display/.
type Displayer interface {
	Show(ctx context.Context, action DisplayAction) error
	Close(ctx context.Context, n Notification) error
}

// Navigator opens or focuses an application route.
type Navigator interface {
	Open(ctx context.Context, route string) error
}

// Handler applies push and interaction decisions through the platform adapters.
// It runs in the worker process and never looks at subscription state.
type Handler struct {
	display Displayer
	nav     Navigator
}

// NewHandler creates a new delivery handler.
func NewHandler(display Displayer, nav Navigator) *Handler {
	return &Handler{display: display, nav: nav}
}

// OnPush renders and displays a push payload. Display failures are logged
// and swallowed.
func (h *Handler) OnPush(ctx context.Context, payload []byte) DisplayAction {
	action := RenderPush(payload)

	if err := h.display.Show(ctx, action); err != nil {
		slog.Error("failed to display notification",
			"title", action.Title,
			"error", err,
		)
		return action
	}

	slog.Info("notification displayed", "title", action.Title, "tag", action.Options.Tag)
	return action
}

// OnNotificationClick closes the notification and navigates exactly once.
func (h *Handler) OnNotificationClick(ctx context.Context, n Notification) error {
	action := HandleClick(n)

	if action.Close {
		if err := h.display.Close(ctx, n); err != nil {
			slog.Warn("failed to close notification", "tag", n.Tag, "error", err)
		}
	}

	if err := h.nav.Open(ctx, action.NavigateTo); err != nil {
		return fmt.Errorf("opening %s: %w", action.NavigateTo, err)
	}

	slog.Info("notification click handled", "tag", n.Tag, "route", action.NavigateTo)
	return nil
}

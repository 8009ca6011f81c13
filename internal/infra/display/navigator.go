package display

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"taskpush/internal/browser"
	"taskpush/internal/delivery"
)

var _ delivery.Navigator = (*BrowserNavigator)(nil)

// BrowserNavigator opens click targets in the default browser, resolved
// against the application's base URL.
type BrowserNavigator struct {
	appURL  string
	enabled bool
	open    func(string) error
}

// NewBrowserNavigator creates a navigator. When enabled is false targets are
// only logged.
func NewBrowserNavigator(appURL string, enabled bool) *BrowserNavigator {
	return &BrowserNavigator{
		appURL:  strings.TrimRight(appURL, "/"),
		enabled: enabled,
		open:    browser.Open,
	}
}

// Open navigates to route.
func (n *BrowserNavigator) Open(ctx context.Context, route string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := n.resolve(route)
	if err != nil {
		return err
	}

	if !n.enabled {
		slog.Info("navigation target", "url", target)
		return nil
	}

	if err := n.open(target); err != nil {
		return fmt.Errorf("opening %s: %w", target, err)
	}
	slog.Info("opened navigation target", "url", target)
	return nil
}

func (n *BrowserNavigator) resolve(route string) (string, error) {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	target := n.appURL + route
	if _, err := url.Parse(target); err != nil {
		return "", fmt.Errorf("invalid navigation target %q: %w", target, err)
	}
	return target, nil
}

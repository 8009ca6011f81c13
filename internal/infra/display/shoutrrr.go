package display

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"slices"
	"strings"
	"time"

	"taskpush/internal/delivery"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/patrickmn/go-cache"
)

// shownRetention bounds how long a displayed notification is tracked.
const shownRetention = 24 * time.Hour

var _ delivery.Displayer = (*ShoutrrrDisplayer)(nil)

type sender interface {
	Send(message string, params *stypes.Params) []error
}

// ShoutrrrDisplayer forwards notifications to shoutrrr services and keeps
// track of which ones are still shown.
type ShoutrrrDisplayer struct {
	sender sender
	shown  *cache.Cache
}

// NewShoutrrrDisplayer builds a displayer for the given shoutrrr service URLs.
func NewShoutrrrDisplayer(urls []string, timeout time.Duration) (*ShoutrrrDisplayer, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one display URL is required")
	}

	router, err := shoutrrr.CreateSender(slices.Clone(urls)...)
	if err != nil {
		return nil, fmt.Errorf("creating shoutrrr sender: %w", err)
	}
	if timeout > 0 {
		router.Timeout = timeout
	}
	router.SetLogger(log.New(io.Discard, "", 0))

	return newDisplayer(router), nil
}

func newDisplayer(s sender) *ShoutrrrDisplayer {
	return &ShoutrrrDisplayer{
		sender: s,
		// Expired entries are swept on Show; no janitor goroutine.
		shown: cache.New(shownRetention, 0),
	}
}

// Show sends the notification to every configured service.
func (d *ShoutrrrDisplayer) Show(_ context.Context, action delivery.DisplayAction) error {
	params := stypes.Params{}
	if action.Title != "" {
		params.SetTitle(action.Title)
	}

	if err := errors.Join(d.sender.Send(action.Options.Body, &params)...); err != nil {
		return fmt.Errorf("displaying notification: %w", err)
	}

	d.shown.DeleteExpired()
	if tag := strings.TrimSpace(action.Options.Tag); tag != "" {
		d.shown.SetDefault(tag, action.Title)
	}
	slog.Debug("notification displayed", "title", action.Title, "tag", action.Options.Tag)
	return nil
}

// Close forgets a displayed notification. Forwarded messages cannot be
// recalled from the remote services.
func (d *ShoutrrrDisplayer) Close(_ context.Context, n delivery.Notification) error {
	if n.Tag == "" {
		return nil
	}
	if !d.isShown(n.Tag) {
		slog.Debug("closing notification that is not displayed", "tag", n.Tag)
		return nil
	}
	d.shown.Delete(strings.TrimSpace(n.Tag))
	slog.Debug("notification closed", "tag", n.Tag)
	return nil
}

// isShown reports whether a notification with the given tag is displayed and not yet closed.
func (d *ShoutrrrDisplayer) isShown(tag string) bool {
	_, ok := d.shown.Get(strings.TrimSpace(tag))
	return ok
}

package platform

import (
	"context"
	"strings"

	"taskpush/internal/push"
)

var _ push.Platform = (*Platform)(nil)

// Platform is the device capability surface backed by the local worker
// process. Permission is a configured answer since there is no user prompt.
type Platform struct {
	permission push.Permission
	registry   *AsynqRegistry
}

// New creates a Platform. A nil registry reports no push capability.
func New(permission string, registry *AsynqRegistry) *Platform {
	return &Platform{
		permission: ParsePermission(permission),
		registry:   registry,
	}
}

// ParsePermission maps a configured permission onto push.Permission.
// Anything unrecognised is treated as an unanswered prompt.
func ParsePermission(s string) push.Permission {
	switch p := push.Permission(strings.ToLower(strings.TrimSpace(s))); p {
	case push.PermissionGranted, push.PermissionDenied:
		return p
	default:
		return push.PermissionPrompt
	}
}

// SupportsPush reports whether a worker registry is available.
func (p *Platform) SupportsPush() bool {
	return p.registry != nil
}

// RequestPermission returns the configured permission.
func (p *Platform) RequestPermission(ctx context.Context) (push.Permission, error) {
	if err := ctx.Err(); err != nil {
		return push.PermissionPrompt, err
	}
	return p.permission, nil
}

// Workers returns the worker registry, or nil when there is none.
func (p *Platform) Workers() push.WorkerRegistry {
	if p.registry == nil {
		return nil
	}
	return p.registry
}

package push

import (
	"errors"
	"fmt"
)

// Reason classifies why a subscription operation failed.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonUnsupported       Reason = "unsupported"
	ReasonWorkerUnavailable Reason = "worker_unavailable"
	ReasonInvalidKey        Reason = "invalid_key"
	ReasonPermissionDenied  Reason = "permission_denied"
	ReasonRegistrarError    Reason = "registrar_error"
)

// Error is the only error type returned by the Coordinator.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same action may succeed without
// any configuration or permission change.
func (e *Error) Retryable() bool {
	switch e.Reason {
	case ReasonWorkerUnavailable, ReasonRegistrarError:
		return true
	default:
		return false
	}
}

// Hint is a short user-facing description of what to do next.
func (e *Error) Hint() string {
	switch e.Reason {
	case ReasonUnsupported:
		return "push notifications are not supported on this device"
	case ReasonWorkerUnavailable:
		return "background worker is not running; start it and try again"
	case ReasonInvalidKey:
		return "push is misconfigured; contact the administrator"
	case ReasonPermissionDenied:
		return "notification permission was denied"
	case ReasonRegistrarError:
		return "could not reach the notification gateway; try again"
	default:
		return ""
	}
}

// ReasonOf extracts the failure reason from err, if it carries one.
func ReasonOf(err error) Reason {
	var pushErr *Error
	if errors.As(err, &pushErr) {
		return pushErr.Reason
	}
	return ReasonNone
}

func newError(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

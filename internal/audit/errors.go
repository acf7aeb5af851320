package audit

import "errors"

var (
	// ErrNoTargets is returned when a batch audit is requested without URLs
	ErrNoTargets = errors.New("at least one target url is required")
	// ErrTooManyTargets is returned when a batch exceeds the configured maximum
	ErrTooManyTargets = errors.New("too many target urls")
	// ErrNotifierNotConfigured is returned when a notification is requested without a notifier
	ErrNotifierNotConfigured = errors.New("slack notifier not configured")
)

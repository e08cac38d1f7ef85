// Package notifications reports run outcomes to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never branch on whether notifications are enabled. Failed runs are
// always reported; clean runs only when notify_success is set.
package notifications

// Package notifier defines the notification delivery port (interface).
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier is not properly configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notification is the payload sent through a Notifier.
type Notification struct {
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"` // e.g. "task_created", "task_shared"
	TaskID     string `json:"task_id"`
	Message    string `json:"message"`
}

// Notifier is the port interface for delivering notifications to employees.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "ws").
	Name() string

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}

// Package notification delivers work-time milestone alerts.
package notification

import "time"

// Notification represents a notification to be sent.
type Notification struct {
	Title   string
	Message string
	Time    time.Time
	// Pattern identifies what triggered the notification, e.g. "threshold:8h".
	Pattern string
}

// Notifier sends notifications.
type Notifier interface {
	Send(notification Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification) error

// Send calls f(n).
func (f NotifierFunc) Send(n Notification) error {
	return f(n)
}

package notification

import (
	"fmt"
	"io"
	"os"
)

// StdoutNotifier prints notifications as plain lines. It is the fallback
// when no desktop or push channel is configured.
type StdoutNotifier struct {
	w io.Writer
}

// NewStdoutNotifier creates a notifier writing to os.Stdout.
func NewStdoutNotifier() *StdoutNotifier {
	return &StdoutNotifier{w: os.Stdout}
}

// NewWriterNotifier creates a notifier writing to w.
func NewWriterNotifier(w io.Writer) *StdoutNotifier {
	return &StdoutNotifier{w: w}
}

// Send prints the notification.
func (n *StdoutNotifier) Send(notification Notification) error {
	stamp := ""
	if !notification.Time.IsZero() {
		stamp = notification.Time.Format("15:04") + " "
	}
	_, err := fmt.Fprintf(n.w, "[NOTIFICATION] %s%s: %s (Pattern: %s)\n",
		stamp,
		notification.Title,
		notification.Message,
		notification.Pattern)
	return err
}

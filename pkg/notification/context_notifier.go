package notification

import (
	"os"
	"strings"
)

// ContextNotifier prefixes titles with the machine name so push
// notifications from several hosts can be told apart.
type ContextNotifier struct {
	underlying Notifier
	host       string
}

// NewContextNotifier wraps underlying. hostname defaults to os.Hostname.
func NewContextNotifier(underlying Notifier, hostname func() (string, error)) *ContextNotifier {
	if hostname == nil {
		hostname = os.Hostname
	}
	host, err := hostname()
	if err != nil {
		host = ""
	}
	// Drop the domain part.
	host, _, _ = strings.Cut(host, ".")

	return &ContextNotifier{
		underlying: underlying,
		host:       host,
	}
}

// Send implements the Notifier interface
func (cn *ContextNotifier) Send(notification Notification) error {
	if cn.host != "" {
		notification.Title = "[" + cn.host + "] " + notification.Title
	}
	return cn.underlying.Send(notification)
}

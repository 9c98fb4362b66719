package notification

import (
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/worktime/pkg/config"
	"github.com/Veraticus/worktime/pkg/interfaces"
)

// Manager gates a notifier behind the quiet switch and a rate limiter and
// reports delivery progress.
type Manager struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	reporter    interfaces.StatusReporter
	quiet       bool
	logger      *slog.Logger

	mu sync.Mutex
}

// NewManager creates a new notification manager. rateLimiter may be nil.
func NewManager(cfg *config.Config, notifier Notifier, rateLimiter interfaces.RateLimiter) *Manager {
	return &Manager{
		notifier:    notifier,
		rateLimiter: rateLimiter,
		quiet:       cfg.Quiet,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetReporter sets where delivery progress is reported.
func (m *Manager) SetReporter(r interfaces.StatusReporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reporter = r
}

// SetLogger sets the logger used for dropped and failed notifications.
func (m *Manager) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

// Send delivers n unless quiet mode is on or the rate limit is exhausted.
// Dropped notifications are not errors.
func (m *Manager) Send(n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quiet {
		m.logger.Debug("notification suppressed, quiet mode", "pattern", n.Pattern)
		return nil
	}

	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		m.logger.Warn("notification dropped by rate limit", "pattern", n.Pattern)
		return nil
	}

	if m.reporter != nil {
		m.reporter.ReportSending()
	}
	err := m.notifier.Send(n)
	if m.reporter != nil {
		if err != nil {
			m.reporter.ReportFailure()
		} else {
			m.reporter.ReportSuccess()
		}
	}
	return err
}

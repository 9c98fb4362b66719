package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/worktime/pkg/config"
	"github.com/Veraticus/worktime/pkg/idle"
	"github.com/Veraticus/worktime/pkg/interfaces"
	"github.com/Veraticus/worktime/pkg/notification"
	"github.com/Veraticus/worktime/pkg/process"
	"github.com/Veraticus/worktime/pkg/session"
	"github.com/Veraticus/worktime/pkg/status"
	"github.com/Veraticus/worktime/pkg/tracker"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config              *config.Config
	Logger              *slog.Logger
	Store               tracker.Store
	IdleSensor          interfaces.IdleSensor
	AppSensor           interfaces.AppSensor
	Notifier            notification.Notifier
	RateLimiter         interfaces.RateLimiter
	NotificationManager *notification.Manager
	StatusIndicator     *status.Indicator
	StatusReporter      *status.Reporter
	Tracker             *tracker.Tracker
	stopChan            chan struct{}
}

// NewDependencies creates all dependencies with the given configuration.
// The status line is drawn on term when it is a terminal; the stdout
// notifier prints to out.
func NewDependencies(cfg *config.Config, logger *slog.Logger, term, out io.Writer, isTerminal bool) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		stopChan: make(chan struct{}),
	}

	deps.Store = session.NewStore(cfg.DataFile, logger)

	idleSensor, err := idle.NewIdleSensor(cfg.IdleSensor)
	if err != nil {
		return nil, fmt.Errorf("idle sensor: %w", err)
	}
	deps.IdleSensor = idleSensor
	if chain, ok := idleSensor.(*idle.ChainSensor); ok {
		chain.SetLogger(logger)
		if chain.Len() == 0 {
			logger.Warn("no idle source available, idle time counts as zero and only the target app gates tracking")
		} else {
			logger.Info("idle sources", "chain", chain.Names())
		}
	}

	appSensor, err := process.NewSensor(cfg.TargetApps)
	if err != nil {
		return nil, fmt.Errorf("app sensor: %w", err)
	}
	deps.AppSensor = appSensor

	statusEnabled := isTerminal && cfg.StatusLine
	deps.StatusIndicator = status.NewIndicator(term, statusEnabled)
	deps.StatusReporter = status.NewReporter(deps.StatusIndicator)
	if statusEnabled {
		deps.StatusIndicator.StartAutoRefresh(0, deps.stopChan)
	}

	deps.Notifier = newNotifier(cfg, logger, out)

	// The tracker is handed a nil notifier when notifications are off.
	var trackerNotifier notification.Notifier
	if deps.Notifier != nil {
		deps.RateLimiter = notification.NewWindowRateLimiter(cfg.RateLimit.MaxMessages, cfg.RateLimit.Window)
		deps.NotificationManager = notification.NewManager(cfg, deps.Notifier, deps.RateLimiter)
		deps.NotificationManager.SetLogger(logger)
		deps.NotificationManager.SetReporter(deps.StatusReporter)
		trackerNotifier = deps.NotificationManager
	}

	deps.Tracker = tracker.New(deps.IdleSensor, deps.AppSensor, deps.Store, trackerNotifier, deps.StatusIndicator,
		trackerOptions(cfg, logger))

	return deps, nil
}

// newNotifier picks the notification channel. It returns nil for "none".
func newNotifier(cfg *config.Config, logger *slog.Logger, out io.Writer) notification.Notifier {
	switch cfg.Notifier {
	case config.NotifierNone:
		return nil
	case config.NotifierNtfy:
		return notification.NewContextNotifier(notification.NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic), nil)
	case config.NotifierStdout:
		return notification.NewWriterNotifier(out)
	default:
		desktop := notification.NewDesktopNotifier()
		if !desktop.IsAvailable() {
			logger.Warn("desktop notifications unavailable, printing to stdout instead")
			return notification.NewWriterNotifier(out)
		}
		return desktop
	}
}

func trackerOptions(cfg *config.Config, logger *slog.Logger) tracker.Options {
	thresholds := make([]tracker.Threshold, 0, len(cfg.Thresholds))
	for _, th := range cfg.Thresholds {
		thresholds = append(thresholds, tracker.Threshold{Name: th.Name, After: th.After})
	}
	return tracker.Options{
		IdleThreshold: cfg.IdleThreshold,
		Thresholds:    thresholds,
		SensorTimeout: cfg.SensorTimeout,
		Logger:        logger,
	}
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	if d.stopChan != nil {
		select {
		case <-d.stopChan:
			// Already closed
		default:
			close(d.stopChan)
		}
		d.stopChan = nil
	}

	if d.StatusIndicator != nil {
		_ = d.StatusIndicator.Clear() // Best effort
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run tracks until ctx is cancelled. The open session is committed and
// today's sessions are flushed before it returns.
func (a *Application) Run(ctx context.Context) error {
	cfg := a.deps.Config
	a.deps.Logger.Info("worktime started",
		"data_file", cfg.DataFile,
		"idle_threshold", cfg.IdleThreshold,
		"tick_interval", cfg.TickInterval,
		"notifier", cfg.Notifier)

	err := a.deps.Tracker.Run(ctx, cfg.TickInterval)

	snap := a.deps.Tracker.Snapshot()
	a.deps.Logger.Info("worktime stopped",
		"date", snap.CurrentDate,
		"worked", tracker.FormatSeconds(snap.TotalSeconds),
		"skipped_ticks", a.deps.Tracker.Skipped())
	return err
}

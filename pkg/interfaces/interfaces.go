// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import "context"

// IdleSensor reports how long the user has been away from the keyboard and mouse.
type IdleSensor interface {
	IdleSeconds(ctx context.Context) (int, error)
}

// AppSensor reports whether the monitored application is running.
type AppSensor interface {
	IsRunning(ctx context.Context) (bool, error)
}

// AvailabilityChecker is implemented by sensors that can probe whether
// their backing tool or API exists on this machine.
type AvailabilityChecker interface {
	IsAvailable() bool
}

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
	Reset()
}

// StatusReporter reports notification delivery state.
type StatusReporter interface {
	ReportSending()
	ReportSuccess()
	ReportFailure()
}

// Package process detects whether the target application is running.
package process

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the process table cannot be read.
var ErrUnavailable = errors.New("process list unavailable")

// Info describes one running process.
type Info struct {
	PID  int
	Name string
	// Exe is the basename of argv[0], or empty when unknown.
	Exe string
}

// Lister enumerates running processes.
type Lister interface {
	List(ctx context.Context) ([]Info, error)
}

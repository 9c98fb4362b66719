package idle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// XprintidleSensor asks the X server for idle time through xprintidle.
type XprintidleSensor struct {
	cmdExecutor cmdExecutor
	lookPath    func(file string) (string, error)
	getenv      func(key string) string
}

// NewXprintidleSensor creates an X11 idle sensor.
func NewXprintidleSensor() *XprintidleSensor {
	return &XprintidleSensor{
		cmdExecutor: defaultCmdExecutor,
		lookPath:    exec.LookPath,
		getenv:      os.Getenv,
	}
}

// IdleSeconds returns whole seconds since the last X input event.
func (s *XprintidleSensor) IdleSeconds(ctx context.Context) (int, error) {
	output, err := s.cmdExecutor(ctx, "xprintidle")
	if err != nil {
		return 0, fmt.Errorf("failed to execute xprintidle: %w", err)
	}

	// xprintidle prints milliseconds
	ms, err := strconv.ParseInt(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse xprintidle output %q: %w", output, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("negative idle time %d", ms)
	}
	return int(ms / 1000), nil
}

// IsAvailable reports whether xprintidle is installed and an X display is set.
func (s *XprintidleSensor) IsAvailable() bool {
	if s.getenv("DISPLAY") == "" {
		return false
	}
	_, err := s.lookPath("xprintidle")
	return err == nil
}

package idle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// IoregSensor reads the HID idle time on macOS via ioreg.
type IoregSensor struct {
	cmdExecutor cmdExecutor
	lookPath    func(file string) (string, error)
}

// NewIoregSensor creates a macOS idle sensor.
func NewIoregSensor() *IoregSensor {
	return &IoregSensor{
		cmdExecutor: defaultCmdExecutor,
		lookPath:    exec.LookPath,
	}
}

// IdleSeconds returns whole seconds since the last keyboard or mouse event.
func (s *IoregSensor) IdleSeconds(ctx context.Context) (int, error) {
	output, err := s.cmdExecutor(ctx, "ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0, fmt.Errorf("failed to execute ioreg: %w", err)
	}

	idleNanos, err := s.parseHIDIdleTime(output)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HIDIdleTime: %w", err)
	}

	return int(time.Duration(idleNanos) / time.Second), nil
}

// parseHIDIdleTime parses the HIDIdleTime from ioreg output.
func (s *IoregSensor) parseHIDIdleTime(output []byte) (int64, error) {
	// Format: "HIDIdleTime" = 123456789
	for _, line := range bytes.Split(output, []byte("\n")) {
		lineStr := string(bytes.TrimSpace(line))
		if !strings.Contains(lineStr, "HIDIdleTime") {
			continue
		}
		parts := strings.Split(lineStr, "=")
		if len(parts) != 2 {
			continue
		}

		valueStr := strings.TrimSpace(parts[1])
		valueStr = strings.TrimSpace(strings.Trim(valueStr, "\""))

		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse idle time value: %w", err)
		}
		if value < 0 {
			return 0, fmt.Errorf("negative idle time %d", value)
		}
		return value, nil
	}

	return 0, fmt.Errorf("HIDIdleTime not found in ioreg output")
}

// IsAvailable checks if ioreg is available on the system.
func (s *IoregSensor) IsAvailable() bool {
	_, err := s.lookPath("ioreg")
	return err == nil
}

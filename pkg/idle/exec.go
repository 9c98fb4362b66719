package idle

import (
	"context"
	"errors"
	"os/exec"
)

// ErrUnavailable is what an empty chain reports when it is asked for idle time.
var ErrUnavailable = errors.New("idle time unavailable")

// cmdExecutor runs a command and returns its stdout.
type cmdExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - command names are fixed by the sensors in this package
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

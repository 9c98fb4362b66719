package process

import (
	"context"
	"os/exec"
)

// cmdExecutor runs a command and returns its stdout.
type cmdExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCmdExecutor(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - only ps is executed, with fixed arguments
	return exec.CommandContext(ctx, name, args...).Output()
}

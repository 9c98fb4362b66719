package notification

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// cmdRunner runs a command and returns its combined output.
type cmdRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCmdRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - the command is notify-send or osascript, message text is passed as an argument
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DesktopNotifier shows a native notification through notify-send on
// Linux or osascript on macOS.
type DesktopNotifier struct {
	goos      string
	timeout   time.Duration
	cmdRunner cmdRunner
	lookPath  func(file string) (string, error)
}

// NewDesktopNotifier creates a notifier for the running platform.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{
		goos:      runtime.GOOS,
		timeout:   5 * time.Second,
		cmdRunner: defaultCmdRunner,
		lookPath:  exec.LookPath,
	}
}

// IsAvailable reports whether the platform's notification command exists.
func (d *DesktopNotifier) IsAvailable() bool {
	name, _ := d.command(Notification{})
	if name == "" {
		return false
	}
	_, err := d.lookPath(name)
	return err == nil
}

// Send shows n on the desktop.
func (d *DesktopNotifier) Send(n Notification) error {
	name, args := d.command(n)
	if name == "" {
		return fmt.Errorf("desktop notifications not supported on %s", d.goos)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if out, err := d.cmdRunner(ctx, name, args...); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *DesktopNotifier) command(n Notification) (string, []string) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptQuote(n.Message), appleScriptQuote(n.Title))
		return "osascript", []string{"-e", script}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{"--app-name=worktime", "--urgency=normal", n.Title, n.Message}
	default:
		return "", nil
	}
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

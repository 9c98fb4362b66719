package idle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TmuxSensor derives idle time from tmux client activity. It is the last
// resort on headless Linux sessions where no display server answers.
type TmuxSensor struct {
	sessionName string
	cmdExecutor cmdExecutor
	getenv      func(key string) string
	now         func() time.Time
}

// NewTmuxSensor creates a new tmux idle sensor.
// If sessionName is empty, it will attempt to detect the current session.
func NewTmuxSensor(sessionName string) *TmuxSensor {
	return &TmuxSensor{
		sessionName: sessionName,
		cmdExecutor: defaultCmdExecutor,
		getenv:      os.Getenv,
		now:         time.Now,
	}
}

// IdleSeconds returns whole seconds since the most recent client activity.
func (s *TmuxSensor) IdleSeconds(ctx context.Context) (int, error) {
	if !s.isInTmux() {
		return 0, fmt.Errorf("not in a tmux session")
	}

	sessionName := s.sessionName
	if sessionName == "" {
		name, err := s.getCurrentSessionName(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to get current session name: %w", err)
		}
		sessionName = name
	}

	idleTime, err := s.getSessionIdleTime(ctx, sessionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get session idle time: %w", err)
	}

	return int(idleTime / time.Second), nil
}

// isInTmux checks if we're running inside a tmux session.
func (s *TmuxSensor) isInTmux() bool {
	return s.getenv("TMUX") != ""
}

// getCurrentSessionName gets the name of the current tmux session.
func (s *TmuxSensor) getCurrentSessionName(ctx context.Context) (string, error) {
	output, err := s.cmdExecutor(ctx, "tmux", "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

// getSessionIdleTime gets the minimum idle time across all clients in a session.
func (s *TmuxSensor) getSessionIdleTime(ctx context.Context, sessionName string) (time.Duration, error) {
	output, err := s.cmdExecutor(ctx, "tmux", "list-clients", "-t", sessionName, "-F", "#{client_activity}")
	if err != nil {
		return 0, err
	}

	var mostRecentActivity time.Time
	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		// client_activity is seconds since epoch
		activitySecs, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			continue
		}

		activityTime := time.Unix(activitySecs, 0)
		if mostRecentActivity.IsZero() || activityTime.After(mostRecentActivity) {
			mostRecentActivity = activityTime
		}
	}

	if mostRecentActivity.IsZero() {
		return 0, fmt.Errorf("no client activity for session %s", sessionName)
	}

	idleTime := s.now().Sub(mostRecentActivity)
	if idleTime < 0 {
		// clock skew
		idleTime = 0
	}

	return idleTime, nil
}

// IsAvailable checks if tmux is available and we're in a tmux session.
func (s *TmuxSensor) IsAvailable() bool {
	if !s.isInTmux() {
		return false
	}

	_, err := s.cmdExecutor(context.Background(), "tmux", "-V")
	return err == nil
}

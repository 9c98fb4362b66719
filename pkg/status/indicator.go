// Package status draws the live tracker state on the terminal's last line.
package status

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Veraticus/worktime/pkg/tracker"
)

// Status represents the current notification status
type Status int

const (
	StatusIdle Status = iota
	StatusSending
	StatusSuccess
	StatusFailed
)

// successLinger is how long a delivered notification stays visible.
const successLinger = 30 * time.Second

type styles struct {
	working lipgloss.Style
	paused  lipgloss.Style
	closed  lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	pending lipgloss.Style
	failed  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		working: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		paused:  r.NewStyle().Foreground(lipgloss.Color("3")),
		closed:  r.NewStyle().Foreground(lipgloss.Color("8")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		pending: r.NewStyle().Foreground(lipgloss.Color("3")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Indicator manages the status display in the terminal. It is the
// tracker's snapshot sink.
type Indicator struct {
	mu       sync.Mutex
	status   Status
	lastSent time.Time
	enabled  bool
	writer   io.Writer
	styles   styles
	now      func() time.Time

	snap    tracker.Snapshot
	hasSnap bool
}

var _ tracker.SnapshotSink = (*Indicator)(nil)

// NewIndicator creates a new status indicator
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	i := &Indicator{
		status:  StatusIdle,
		writer:  writer,
		enabled: enabled,
		now:     time.Now,
	}
	if writer != nil {
		i.styles = newStyles(lipgloss.NewRenderer(writer))
	} else {
		i.styles = newStyles(lipgloss.DefaultRenderer())
	}
	return i
}

// Publish records the latest tracker snapshot and redraws.
func (i *Indicator) Publish(s tracker.Snapshot) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.snap = s
	i.hasSnap = true
	_ = i.draw()
}

// SetStatus updates the notification delivery status
func (i *Indicator) SetStatus(status Status) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.status = status
	if status == StatusSuccess {
		i.lastSent = i.now()
	}

	// Best effort - don't fail if we can't update the display
	_ = i.draw()
}

// draw renders the status indicator
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	statusText := i.getStatusText()
	if statusText == "" {
		return nil
	}

	// \0337 saves the cursor, \033[r resets the scroll region,
	// \033[999;1H moves to the last line, \033[2K clears it and
	// \0338 restores the cursor.
	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", statusText)

	_, err := fmt.Fprint(i.writer, sequence)
	return err
}

// getStatusText returns the appropriate status text with color
func (i *Indicator) getStatusText() string {
	var parts []string

	if i.hasSnap {
		parts = append(parts, i.styles.line(i.snap, i.now()))
	}

	switch i.status {
	case StatusSending:
		parts = append(parts, i.styles.pending.Render("⟳ notify"))
	case StatusSuccess:
		elapsed := i.now().Sub(i.lastSent)
		if elapsed < successLinger {
			text := "✓ notify"
			if secs := int(elapsed.Seconds()); secs > 0 {
				text = fmt.Sprintf("✓ notify (%ds)", secs)
			}
			parts = append(parts, i.styles.ok.Render(text))
		}
	case StatusFailed:
		parts = append(parts, i.styles.failed.Render("✗ notify"))
	}

	return strings.Join(parts, i.styles.muted.Render(" · "))
}

// Line renders a snapshot without colour, e.g. for logs or one-shot output.
func Line(s tracker.Snapshot, now time.Time) string {
	return newStyles(lipgloss.NewRenderer(io.Discard)).line(s, now)
}

func (st styles) line(s tracker.Snapshot, now time.Time) string {
	total := tracker.FormatSeconds(s.TotalSeconds)
	ago := humanize.RelTime(s.LastActive(), now, "ago", "from now")

	switch s.Status {
	case tracker.StatusWorking:
		return st.working.Render("▶ working "+total) + st.muted.Render(" today")
	case tracker.StatusPausedIdle:
		return st.paused.Render("Ⓩ idle "+total) + st.muted.Render(" today, last active "+ago)
	case tracker.StatusPausedAppClosed:
		return st.closed.Render("■ app closed "+total) + st.muted.Render(" today, last active "+ago)
	default:
		return st.muted.Render("… starting")
	}
}

// Clear removes the status indicator
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled || i.writer == nil {
		return nil
	}

	_, err := fmt.Fprint(i.writer, "\0337\033[999;1H\033[2K\0338")
	return err
}

// StartAutoRefresh redraws every interval so relative times stay current.
// The line is cleared when stopChan closes.
func (i *Indicator) StartAutoRefresh(interval time.Duration, stopChan <-chan struct{}) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				i.mu.Lock()
				_ = i.draw() // Best effort
				i.mu.Unlock()
			case <-stopChan:
				_ = i.Clear() // Best effort
				return
			}
		}
	}()
}

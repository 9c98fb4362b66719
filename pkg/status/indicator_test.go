package status

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/worktime/pkg/tracker"
)

var testNow = time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)

func newTestIndicator(buf *bytes.Buffer, enabled bool) *Indicator {
	i := NewIndicator(buf, enabled)
	i.now = func() time.Time { return testNow }
	return i
}

func TestNewIndicator(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)

	if indicator.status != StatusIdle {
		t.Errorf("expected initial status to be StatusIdle, got %v", indicator.status)
	}
	if indicator.writer != buf {
		t.Errorf("expected writer to be set")
	}
	if !indicator.enabled {
		t.Errorf("expected indicator to be enabled")
	}
}

func TestIndicatorPublish(t *testing.T) {
	tests := []struct {
		name string
		snap tracker.Snapshot
		want []string
	}{
		{
			name: "working",
			snap: tracker.Snapshot{TotalSeconds: 3*3600 + 12*60, Status: tracker.StatusWorking, IsTracking: true},
			want: []string{"▶ working 3h 12m", "today"},
		},
		{
			name: "idle",
			snap: tracker.Snapshot{
				TotalSeconds:   3600,
				Status:         tracker.StatusPausedIdle,
				LastActiveTime: testNow.Add(-3 * time.Minute).UnixMilli(),
			},
			want: []string{"Ⓩ idle 1h 0m", "last active 3 minutes ago"},
		},
		{
			name: "app closed",
			snap: tracker.Snapshot{
				Status:         tracker.StatusPausedAppClosed,
				LastActiveTime: testNow.Add(-2 * time.Hour).UnixMilli(),
			},
			want: []string{"■ app closed 0h 0m", "2 hours ago"},
		},
		{
			name: "initializing",
			snap: tracker.Snapshot{Status: tracker.StatusInitializing},
			want: []string{"starting"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := newTestIndicator(buf, true)

			indicator.Publish(tt.snap)

			output := buf.String()
			if !strings.HasPrefix(output, "\0337") || !strings.HasSuffix(output, "\0338") {
				t.Errorf("expected cursor save/restore around output, got %q", output)
			}
			for _, w := range tt.want {
				if !strings.Contains(output, w) {
					t.Errorf("expected output to contain %q, got %q", w, output)
				}
			}
		})
	}
}

func TestIndicatorSetStatus(t *testing.T) {
	tests := []struct {
		name           string
		status         Status
		expectedOutput string
		enabled        bool
	}{
		{name: "sending status", status: StatusSending, expectedOutput: "⟳ notify", enabled: true},
		{name: "success status", status: StatusSuccess, expectedOutput: "✓ notify", enabled: true},
		{name: "failed status", status: StatusFailed, expectedOutput: "✗ notify", enabled: true},
		{name: "idle status shows nothing", status: StatusIdle, enabled: true},
		{name: "disabled indicator shows nothing", status: StatusSuccess, enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := newTestIndicator(buf, tt.enabled)

			indicator.SetStatus(tt.status)

			output := buf.String()
			if tt.expectedOutput != "" {
				if !strings.Contains(output, tt.expectedOutput) {
					t.Errorf("expected output to contain %q, got %q", tt.expectedOutput, output)
				}
			} else if output != "" {
				t.Errorf("expected no output, got %q", output)
			}
		})
	}
}

func TestIndicatorSuccessStatusWithTime(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := newTestIndicator(buf, true)
	indicator.Publish(tracker.Snapshot{Status: tracker.StatusWorking})

	indicator.SetStatus(StatusSuccess)
	if !strings.Contains(buf.String(), "✓ notify") {
		t.Errorf("expected checkmark, got %q", buf.String())
	}

	indicator.mu.Lock()
	indicator.lastSent = testNow.Add(-10 * time.Second)
	buf.Reset()
	_ = indicator.draw()
	indicator.mu.Unlock()

	if !strings.Contains(buf.String(), "✓ notify (10s)") {
		t.Errorf("expected output to contain time indicator, got %q", buf.String())
	}

	indicator.mu.Lock()
	indicator.lastSent = testNow.Add(-35 * time.Second)
	buf.Reset()
	_ = indicator.draw()
	indicator.mu.Unlock()

	output := buf.String()
	if strings.Contains(output, "notify") {
		t.Errorf("expected no notify text after 30 seconds, got %q", output)
	}
	if !strings.Contains(output, "working") {
		t.Errorf("expected tracker state to remain, got %q", output)
	}
}

func TestIndicatorClear(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := newTestIndicator(buf, true)
	indicator.Publish(tracker.Snapshot{Status: tracker.StatusWorking})

	buf.Reset()
	if err := indicator.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "working") {
		t.Errorf("expected cleared output to not contain status text, got %q", output)
	}
	if !strings.Contains(output, "\033[2K") {
		t.Errorf("expected clear-line sequence in output, got %q", output)
	}
}

func TestLine(t *testing.T) {
	s := tracker.Snapshot{TotalSeconds: 6 * 3600, Status: tracker.StatusWorking}
	if got := Line(s, testNow); got != "▶ working 6h 0m today" {
		t.Errorf("Line() = %q", got)
	}
}

func TestIndicatorAutoRefresh(t *testing.T) {
	type safeBuffer struct {
		mu  sync.Mutex
		buf bytes.Buffer
	}
	sb := &safeBuffer{}
	writer := writerFunc(func(p []byte) (n int, err error) {
		sb.mu.Lock()
		defer sb.mu.Unlock()
		return sb.buf.Write(p)
	})

	indicator := NewIndicator(writer, true)
	indicator.Publish(tracker.Snapshot{Status: tracker.StatusWorking})

	stopChan := make(chan struct{})
	indicator.StartAutoRefresh(20*time.Millisecond, stopChan)
	time.Sleep(150 * time.Millisecond)
	close(stopChan)
	time.Sleep(50 * time.Millisecond)

	sb.mu.Lock()
	output := sb.buf.String()
	sb.mu.Unlock()

	if n := strings.Count(output, "working"); n < 2 {
		t.Errorf("expected at least 2 draws, got %d", n)
	}
	if !strings.HasSuffix(output, "\0337\033[999;1H\033[2K\0338") {
		t.Errorf("expected line cleared on stop, got %q", output)
	}
}

// writerFunc is an adapter to allow functions to implement io.Writer
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}

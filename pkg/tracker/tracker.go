// Package tracker turns periodic idle and process samples into work sessions.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/worktime/pkg/interfaces"
	"github.com/Veraticus/worktime/pkg/notification"
	"github.com/Veraticus/worktime/pkg/session"
)

// Options tune a Tracker. Zero values fall back to the defaults.
type Options struct {
	IdleThreshold time.Duration
	Thresholds    []Threshold
	SensorTimeout time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// Tracker owns the tracking state. Step is the only mutator besides Shutdown,
// and the two never run concurrently.
type Tracker struct {
	mu sync.Mutex

	idle     interfaces.IdleSensor
	app      interfaces.AppSensor
	store    Store
	notifier notification.Notifier
	sink     SnapshotSink

	idleThreshold time.Duration
	thresholds    []Threshold
	sensorTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time

	st state
	// days that failed to flush at rollover, retried at the next flush
	unsaved map[string][]session.Session

	skipped atomic.Int64
	// notification batches still being delivered
	sending sync.WaitGroup
}

// New creates a tracker seeded with today's sessions from store.
// notifier and sink may be nil.
func New(idle interfaces.IdleSensor, app interfaces.AppSensor, store Store,
	notifier notification.Notifier, sink SnapshotSink, opts Options) *Tracker {
	t := &Tracker{
		idle:          idle,
		app:           app,
		store:         store,
		notifier:      notifier,
		sink:          sink,
		idleThreshold: opts.IdleThreshold,
		thresholds:    opts.Thresholds,
		sensorTimeout: opts.SensorTimeout,
		logger:        opts.Logger,
		now:           opts.Now,
		unsaved:       make(map[string][]session.Session),
	}
	if t.idleThreshold <= 0 {
		t.idleThreshold = DefaultIdleThreshold
	}
	if t.thresholds == nil {
		t.thresholds = DefaultThresholds()
	}
	t.thresholds = append([]Threshold(nil), t.thresholds...)
	sort.SliceStable(t.thresholds, func(i, j int) bool {
		return t.thresholds[i].After < t.thresholds[j].After
	})
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if t.now == nil {
		t.now = time.Now
	}

	now := t.now()
	t.st = state{
		day:        session.StartOfDay(now),
		status:     StatusInitializing,
		lastActive: now,
		notified:   make(map[string]bool),
	}
	if rec, ok := store.Load()[t.st.date()]; ok {
		t.st.sessions = append(t.st.sessions, rec.Sessions...)
	}

	// Milestones already passed before a restart have been announced.
	seeded := t.dailyTotal(now)
	for _, th := range t.thresholds {
		if seeded >= int64(th.After/time.Second) {
			t.st.notified[th.Name] = true
		}
	}
	return t
}

// Run ticks every interval until ctx is cancelled, then runs the shutdown hook.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", interval)
	}

	// In-flight steps finish with their own sensor timeouts.
	stepCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	tick := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Tick(stepCtx)
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			t.Shutdown()
			return nil
		case <-ticker.C:
			tick()
		}
	}
}

// Tick runs one step unless another is still in progress, in which case
// the tick is dropped. It reports whether the step ran.
func (t *Tracker) Tick(ctx context.Context) bool {
	if !t.mu.TryLock() {
		n := t.skipped.Add(1)
		t.logger.Debug("tick skipped, previous step still running", "skipped_total", n)
		return false
	}
	defer t.mu.Unlock()

	t.step(ctx, t.now())
	return true
}

// Skipped returns how many ticks were dropped because a step was in flight.
func (t *Tracker) Skipped() int64 {
	return t.skipped.Load()
}

// Snapshot returns the current state without running a step.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(t.now())
}

// Shutdown closes an open session at the current time and flushes today.
// A midnight passed since the last step is handled first so no stored
// session spans two dates. It waits for an in-flight step and for
// notifications still being delivered.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	now := t.now()
	t.rollover(now)
	if t.st.tracking {
		t.closeSession(now)
	}
	t.flush()
	t.logger.Info("tracker stopped", "date", t.st.date(), "sessions", len(t.st.sessions))
	t.mu.Unlock()

	t.sending.Wait()
}

func (t *Tracker) step(ctx context.Context, now time.Time) {
	t.rollover(now)

	running, appErr := t.sampleApp(ctx)
	if appErr != nil {
		t.logger.Warn("app sensor failed", "error", appErr)
	}
	idleSecs, idleErr := t.sampleIdle(ctx)
	if idleErr != nil {
		t.logger.Warn("idle sensor failed", "error", idleErr)
	}

	working := appErr == nil && idleErr == nil &&
		running && time.Duration(idleSecs)*time.Second < t.idleThreshold

	switch {
	case working && !t.st.tracking:
		t.st.tracking = true
		t.st.sessionStart = now
		t.logger.Info("session started", "at", now)
	case !working && t.st.tracking:
		if t.closeSession(now) {
			t.flush()
		}
	}

	switch {
	case working:
		t.st.status = StatusWorking
		t.st.lastActive = now
	case appErr != nil || !running:
		t.st.status = StatusPausedAppClosed
	default:
		t.st.status = StatusPausedIdle
	}
	if !working && idleErr == nil {
		t.st.lastActive = now.Add(-time.Duration(idleSecs) * time.Second)
	}

	snap := t.snapshot(now)
	t.checkThresholds(snap.TotalSeconds, now)
	t.publish(snap)
}

// rollover moves the state to a new local date. An open session is split
// at midnight: the first half is flushed under the old date and tracking
// continues under the new one.
func (t *Tracker) rollover(now time.Time) {
	today := session.StartOfDay(now)
	if today.Equal(t.st.day) {
		return
	}
	oldDate := t.st.date()
	wasTracking := t.st.tracking

	end := session.NextDay(t.st.day)
	if end.After(now) {
		// clock went backwards
		end = now
	}
	if wasTracking {
		t.closeSession(end)
	}
	t.flush()

	t.st.sessions = nil
	t.st.day = today
	t.st.notified = make(map[string]bool)

	if wasTracking {
		// Reopen at midnight only when the old session ran right up to it;
		// after a gap of more than a day there is nothing to continue.
		start := now
		if end.Equal(today) {
			start = end
		}
		t.st.tracking = true
		t.st.sessionStart = start
	}
	t.logger.Info("day rollover", "from", oldDate, "to", t.st.date(), "tracking", wasTracking)
}

// closeSession ends the open session at end and reports whether a session
// long enough to keep was appended.
func (t *Tracker) closeSession(end time.Time) bool {
	start := t.st.sessionStart
	t.st.tracking = false
	t.st.sessionStart = time.Time{}

	s, ok := session.New(start, end)
	if !ok {
		return false
	}
	t.st.sessions = append(t.st.sessions, s)
	t.logger.Info("session committed", "start", s.Start, "end", s.End, "duration", s.Duration)
	return true
}

// flush writes the current date and retries any earlier day that failed.
func (t *Tracker) flush() {
	for date, sessions := range t.unsaved {
		if err := t.store.SaveDay(date, sessions); err != nil {
			t.logger.Warn("retry save failed", "date", date, "error", err)
			continue
		}
		delete(t.unsaved, date)
	}

	date := t.st.date()
	if err := t.store.SaveDay(date, t.st.sessions); err != nil {
		t.logger.Warn("save sessions failed", "date", date, "error", err)
		t.unsaved[date] = append([]session.Session(nil), t.st.sessions...)
		return
	}
	delete(t.unsaved, date)
}

func (t *Tracker) sampleApp(ctx context.Context) (bool, error) {
	if t.app == nil {
		return false, fmt.Errorf("no app sensor configured")
	}
	ctx, cancel := t.sensorContext(ctx)
	defer cancel()
	return t.app.IsRunning(ctx)
}

func (t *Tracker) sampleIdle(ctx context.Context) (int, error) {
	if t.idle == nil {
		return 0, fmt.Errorf("no idle sensor configured")
	}
	ctx, cancel := t.sensorContext(ctx)
	defer cancel()
	secs, err := t.idle.IdleSeconds(ctx)
	if err != nil {
		return 0, err
	}
	return max(secs, 0), nil
}

func (t *Tracker) sensorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.sensorTimeout > 0 {
		return context.WithTimeout(ctx, t.sensorTimeout)
	}
	return context.WithCancel(ctx)
}

// dailyTotal recomputes today's seconds from committed sessions and the
// open one, each clipped to the local day containing now.
func (t *Tracker) dailyTotal(now time.Time) int64 {
	total := session.DayTotal(t.st.sessions, now)
	if t.st.tracking {
		total += session.Overlap(t.st.sessionStart, now, session.StartOfDay(now), session.NextDay(now))
	}
	return total
}

func (t *Tracker) checkThresholds(total int64, now time.Time) {
	var batch []notification.Notification
	for _, th := range t.thresholds {
		if t.st.notified[th.Name] || total < int64(th.After/time.Second) {
			continue
		}
		t.st.notified[th.Name] = true
		t.logger.Info("work time threshold reached", "threshold", th.Name, "total_seconds", total)
		if t.notifier == nil {
			continue
		}
		batch = append(batch, notification.Notification{
			Title:   fmt.Sprintf("Work time: %s reached", th.Name),
			Message: fmt.Sprintf("You have worked %s today. Consider taking a break.", FormatSeconds(total)),
			Time:    now,
			Pattern: "threshold:" + th.Name,
		})
	}
	t.dispatch(batch)
}

// dispatch delivers batch in order on its own goroutine, outside the
// state lock.
func (t *Tracker) dispatch(batch []notification.Notification) {
	if len(batch) == 0 {
		return
	}
	t.sending.Add(1)
	go func() {
		defer t.sending.Done()
		defer func() {
			if r := recover(); r != nil {
				t.logger.Warn("notifier panicked", "panic", r)
			}
		}()
		for _, n := range batch {
			if err := t.notifier.Send(n); err != nil {
				t.logger.Warn("send threshold notification", "pattern", n.Pattern, "error", err)
			}
		}
	}()
}

func (t *Tracker) snapshot(now time.Time) Snapshot {
	return Snapshot{
		TotalSeconds:   t.dailyTotal(now),
		Status:         t.st.status,
		IsTracking:     t.st.tracking,
		LastActiveTime: t.st.lastActive.UnixMilli(),
		CurrentDate:    t.st.date(),
	}
}

func (t *Tracker) publish(s Snapshot) {
	if t.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("snapshot sink panicked", "panic", r)
		}
	}()
	t.sink.Publish(s)
}

// FormatSeconds renders a second count as "6h 0m".
func FormatSeconds(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
}

package tracker

import (
	"time"

	"github.com/Veraticus/worktime/pkg/session"
)

// Status is the tracker's classification of the current moment.
type Status string

const (
	StatusInitializing    Status = "initializing"
	StatusWorking         Status = "working"
	StatusPausedIdle      Status = "paused_idle"
	StatusPausedAppClosed Status = "paused_app_closed"
)

// Threshold is a daily work-time milestone that triggers one notification per day.
type Threshold struct {
	Name  string
	After time.Duration
}

// DefaultThresholds are the 6, 8 and 10 hour milestones.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Name: "6h", After: 6 * time.Hour},
		{Name: "8h", After: 8 * time.Hour},
		{Name: "10h", After: 10 * time.Hour},
	}
}

// DefaultIdleThreshold is how long without input still counts as working.
const DefaultIdleThreshold = 120 * time.Second

// Snapshot is what the tracker publishes after every step.
type Snapshot struct {
	TotalSeconds   int64  `json:"total_seconds"`
	Status         Status `json:"status"`
	IsTracking     bool   `json:"is_tracking"`
	LastActiveTime int64  `json:"last_active_time"`
	CurrentDate    string `json:"current_date"`
}

// LastActive returns LastActiveTime as a time.Time.
func (s Snapshot) LastActive() time.Time {
	return time.UnixMilli(s.LastActiveTime)
}

// SnapshotSink receives snapshots. Publish must not block for long; the
// tracker does not look at the outcome.
type SnapshotSink interface {
	Publish(Snapshot)
}

// SnapshotSinkFunc adapts a function to SnapshotSink.
type SnapshotSinkFunc func(Snapshot)

// Publish calls f.
func (f SnapshotSinkFunc) Publish(s Snapshot) {
	f(s)
}

// Store is the persistence the tracker needs.
type Store interface {
	Load() session.History
	SaveDay(date string, sessions []session.Session) error
}

// state is owned by the Tracker and only touched while holding its lock.
type state struct {
	sessionStart time.Time // zero unless tracking
	tracking     bool
	sessions     []session.Session
	day          time.Time // local midnight of the current date
	status       Status
	lastActive   time.Time
	notified     map[string]bool
}

func (s *state) date() string {
	return session.DateKey(s.day)
}

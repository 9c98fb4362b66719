// Package session holds the day-partitioned session log and its on-disk store.
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the key format of a day bucket, always in the local zone.
const DateLayout = "2006-01-02"

// timestampLayout is the wire format of session boundaries.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Session is one contiguous interval of detected work.
type Session struct {
	Start    time.Time
	End      time.Time
	Duration int64
}

// New builds a session for [start, end). ok is false when the interval is
// shorter than one whole second, in which case it must not be recorded.
func New(start, end time.Time) (s Session, ok bool) {
	d := Elapsed(start, end)
	if d <= 0 {
		return Session{}, false
	}
	return Session{Start: start, End: end, Duration: d}, true
}

// Elapsed returns the whole seconds between start and end, truncated.
func Elapsed(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}

type sessionJSON struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int64  `json:"duration"`
}

// MarshalJSON writes boundaries as UTC ISO-8601 with millisecond precision.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		Start:    s.Start.UTC().Format(timestampLayout),
		End:      s.End.UTC().Format(timestampLayout),
		Duration: s.Duration,
	})
}

// UnmarshalJSON accepts any RFC 3339 timestamp.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339Nano, raw.Start)
	if err != nil {
		return fmt.Errorf("parse session start: %w", err)
	}
	end, err := time.Parse(time.RFC3339Nano, raw.End)
	if err != nil {
		return fmt.Errorf("parse session end: %w", err)
	}
	s.Start, s.End, s.Duration = start, end, raw.Duration
	return nil
}

// DayRecord is the persisted entry for one local calendar date. Total is
// a convenience cache for readers of the file; code that needs the real
// figure sums Sessions instead.
type DayRecord struct {
	Total    int64     `json:"total"`
	Sessions []Session `json:"sessions"`
}

// NewDayRecord copies sessions and computes the cached total.
func NewDayRecord(sessions []Session) DayRecord {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	return DayRecord{Total: SumDurations(out), Sessions: out}
}

// SumDurations adds up the recorded durations.
func SumDurations(sessions []Session) int64 {
	var total int64
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// History maps a DateLayout key to its day record.
type History map[string]DayRecord

// DateKey returns the local calendar date of t as a History key.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// NextDay returns local midnight of the day after the one containing t.
// On daylight-saving transitions the day is 23 or 25 hours long.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// Overlap returns the whole seconds of [start, end) that fall inside
// [winStart, winEnd).
func Overlap(start, end, winStart, winEnd time.Time) int64 {
	if start.Before(winStart) {
		start = winStart
	}
	if end.After(winEnd) {
		end = winEnd
	}
	if !end.After(start) {
		return 0
	}
	return Elapsed(start, end)
}

// DayTotal sums the parts of sessions that fall on the local day containing day.
func DayTotal(sessions []Session, day time.Time) int64 {
	from, to := StartOfDay(day), NextDay(day)
	var total int64
	for _, s := range sessions {
		total += Overlap(s.Start, s.End, from, to)
	}
	return total
}

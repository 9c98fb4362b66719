package process

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/worktime/pkg/config"
)

// ErrNoPatterns is returned by NewSensor when no target pattern is usable.
var ErrNoPatterns = errors.New("no enabled target app patterns")

// Sensor reports whether any process matches the target patterns.
type Sensor struct {
	lister  Lister
	matcher *Matcher
}

// NewSensor creates a sensor over the platform's default process lister.
func NewSensor(patterns []config.Pattern) (*Sensor, error) {
	return NewSensorWithLister(defaultLister(), patterns)
}

// NewSensorWithLister creates a sensor over lister.
func NewSensorWithLister(lister Lister, patterns []config.Pattern) (*Sensor, error) {
	m := NewMatcher(patterns)
	if len(m.patterns) == 0 {
		return nil, ErrNoPatterns
	}
	return &Sensor{lister: lister, matcher: m}, nil
}

// IsRunning lists processes and reports whether one of them matches.
func (s *Sensor) IsRunning(ctx context.Context) (bool, error) {
	procs, err := s.lister.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		if _, ok := s.matcher.Match(p); ok {
			return true, nil
		}
	}
	return false, nil
}

package idle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/worktime/pkg/interfaces"
)

// ChainSensor asks each member in order and returns the first answer.
// When no member answers it reports zero idle time, so a missing idle
// source never blocks tracking on its own.
type ChainSensor struct {
	names   []string
	sensors []interfaces.IdleSensor
	logger  *slog.Logger

	mu      sync.Mutex
	failing bool
}

// NewChainSensor creates an empty chain. Add members with Append.
func NewChainSensor() *ChainSensor {
	return &ChainSensor{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// SetLogger sets where failures of the whole chain are reported.
func (c *ChainSensor) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Append adds a named member at the end of the chain.
func (c *ChainSensor) Append(name string, s interfaces.IdleSensor) *ChainSensor {
	c.names = append(c.names, name)
	c.sensors = append(c.sensors, s)
	return c
}

// Names lists the members in the order they are tried.
func (c *ChainSensor) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of members.
func (c *ChainSensor) Len() int {
	return len(c.sensors)
}

// IdleSeconds returns the first successful member's reading. If every
// member fails, or the chain is empty, it returns 0 and logs the joined
// errors once per run of failures. Only a cancelled ctx is an error.
func (c *ChainSensor) IdleSeconds(ctx context.Context) (int, error) {
	var errs []error
	for i, s := range c.sensors {
		secs, err := s.IdleSeconds(ctx)
		if err == nil {
			c.recovered()
			return secs, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.names[i], err))
		if ctx.Err() != nil {
			break
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return 0, ctx.Err()
	}
	if len(errs) == 0 {
		errs = append(errs, ErrUnavailable)
	}
	c.fail(errors.Join(errs...))
	return 0, nil
}

func (c *ChainSensor) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.failing {
		c.failing = true
		c.logger.Warn("no idle source answered, treating idle time as zero", "error", err)
	}
}

func (c *ChainSensor) recovered() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		c.failing = false
		c.logger.Info("idle source available again")
	}
}

// StaticSensor always reports the same idle time. With zero it treats the
// user as permanently present, which makes tracking depend on the target
// app alone.
type StaticSensor struct {
	mu   sync.RWMutex
	secs int
}

// NewStaticSensor creates a sensor that reports secs.
func NewStaticSensor(secs int) *StaticSensor {
	return &StaticSensor{secs: secs}
}

// IdleSeconds returns the configured value.
func (s *StaticSensor) IdleSeconds(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secs, nil
}

// Set changes the reported value.
func (s *StaticSensor) Set(secs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secs = secs
}

// Package idle provides idle-time sensors for determining user presence.
package idle

import (
	"fmt"

	"github.com/Veraticus/worktime/pkg/interfaces"
)

// Sensor kinds accepted by NewIdleSensor.
const (
	KindAuto       = "auto"
	KindXprintidle = "xprintidle"
	KindMutter     = "mutter"
	KindTmux       = "tmux"
	KindIoreg      = "ioreg"
	KindNone       = "none"
)

// candidate is a sensor that may or may not work on this machine.
type candidate struct {
	name   string
	sensor interfaces.IdleSensor
}

// NewIdleSensor builds the idle sensor for kind. KindAuto probes the
// platform's candidates and chains the available ones in preference order:
//   - Linux: xprintidle, GNOME Mutter, tmux
//   - macOS: ioreg
//   - elsewhere: nothing.
//
// A named kind is a chain of that one source. Either way a read that no
// source can answer reports zero idle time.
//
// KindNone reports zero idle time so only the target app gates tracking.
func NewIdleSensor(kind string) (interfaces.IdleSensor, error) {
	var single interfaces.IdleSensor
	switch kind {
	case "", KindAuto:
		return buildChain(platformCandidates()), nil
	case KindNone:
		return NewStaticSensor(0), nil
	case KindXprintidle:
		single = NewXprintidleSensor()
	case KindMutter:
		single = NewMutterSensor()
	case KindTmux:
		single = NewTmuxSensor("")
	case KindIoreg:
		single = NewIoregSensor()
	default:
		return nil, fmt.Errorf("unknown idle sensor %q", kind)
	}
	return NewChainSensor().Append(kind, single), nil
}

// buildChain keeps the candidates whose IsAvailable probe succeeds.
func buildChain(candidates []candidate) *ChainSensor {
	chain := NewChainSensor()
	for _, c := range candidates {
		if ac, ok := c.sensor.(interfaces.AvailabilityChecker); ok && !ac.IsAvailable() {
			continue
		}
		chain.Append(c.name, c.sensor)
	}
	return chain
}

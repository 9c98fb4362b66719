package idle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mutterDest   = "org.gnome.Mutter.IdleMonitor"
	mutterPath   = dbus.ObjectPath("/org/gnome/Mutter/IdleMonitor/Core")
	mutterMethod = "org.gnome.Mutter.IdleMonitor.GetIdletime"

	mutterCheckTimeout = 2 * time.Second
)

// MutterSensor reads idle time from GNOME's IdleMonitor over the session bus.
// It works on Wayland sessions where xprintidle cannot.
type MutterSensor struct {
	// idletime returns the monitor's reading in milliseconds.
	idletime func(ctx context.Context) (uint64, error)
	// hasMonitor reports whether the IdleMonitor name is owned on the bus.
	hasMonitor func(ctx context.Context) (bool, error)
}

// NewMutterSensor creates a GNOME Mutter idle sensor. The session bus is
// dialled on first use and the connection is kept for later reads.
func NewMutterSensor() *MutterSensor {
	bus := &sessionBus{}
	return &MutterSensor{
		idletime:   bus.idletime,
		hasMonitor: bus.hasMonitor,
	}
}

// IdleSeconds returns whole seconds reported by org.gnome.Mutter.IdleMonitor.
func (s *MutterSensor) IdleSeconds(ctx context.Context) (int, error) {
	ms, err := s.idletime(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query mutter idle monitor: %w", err)
	}
	return int(ms / 1000), nil
}

// IsAvailable reports whether a session bus is reachable and something
// owns the IdleMonitor name on it.
func (s *MutterSensor) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), mutterCheckTimeout)
	defer cancel()

	ok, err := s.hasMonitor(ctx)
	return err == nil && ok
}

// sessionBus holds a lazily dialled session bus connection.
type sessionBus struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

func (b *sessionBus) connect() (*dbus.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil && b.conn.Connected() {
		return b.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	b.conn = conn
	return conn, nil
}

func (b *sessionBus) idletime(ctx context.Context) (uint64, error) {
	conn, err := b.connect()
	if err != nil {
		return 0, err
	}

	call := conn.Object(mutterDest, mutterPath).CallWithContext(ctx, mutterMethod, 0)
	if call.Err != nil {
		return 0, call.Err
	}
	var ms uint64
	if err := call.Store(&ms); err != nil {
		return 0, fmt.Errorf("failed to parse idle monitor reply: %w", err)
	}
	return ms, nil
}

func (b *sessionBus) hasMonitor(ctx context.Context) (bool, error) {
	conn, err := b.connect()
	if err != nil {
		return false, err
	}

	var owned bool
	err = conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, mutterDest).Store(&owned)
	return owned, err
}

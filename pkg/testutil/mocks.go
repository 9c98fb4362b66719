// Package testutil holds thread-safe test doubles shared across packages.
package testutil

import (
	"context"
	"sync"

	"github.com/Veraticus/worktime/pkg/session"
	"github.com/Veraticus/worktime/pkg/tracker"
)

// MockIdleSensor is a mock implementation of interfaces.IdleSensor
type MockIdleSensor struct {
	mu        sync.Mutex
	secs      int
	err       error
	callCount int
}

// NewMockIdleSensor creates a sensor that reports secs of idle time.
func NewMockIdleSensor(secs int) *MockIdleSensor {
	return &MockIdleSensor{secs: secs}
}

// IdleSeconds implements the IdleSensor interface
func (m *MockIdleSensor) IdleSeconds(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	return m.secs, m.err
}

// Set changes the reported idle time and error.
func (m *MockIdleSensor) Set(secs int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secs = secs
	m.err = err
}

// GetCallCount returns how many times IdleSeconds was called
func (m *MockIdleSensor) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockAppSensor is a mock implementation of interfaces.AppSensor
type MockAppSensor struct {
	mu        sync.Mutex
	running   bool
	err       error
	callCount int
}

// NewMockAppSensor creates a sensor reporting running.
func NewMockAppSensor(running bool) *MockAppSensor {
	return &MockAppSensor{running: running}
}

// IsRunning implements the AppSensor interface
func (m *MockAppSensor) IsRunning(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	return m.running, m.err
}

// Set changes the reported state and error.
func (m *MockAppSensor) Set(running bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = running
	m.err = err
}

// GetCallCount returns how many times IsRunning was called
func (m *MockAppSensor) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockSnapshotSink records every published snapshot.
type MockSnapshotSink struct {
	mu        sync.Mutex
	snapshots []tracker.Snapshot
}

// NewMockSnapshotSink creates an empty sink.
func NewMockSnapshotSink() *MockSnapshotSink {
	return &MockSnapshotSink{}
}

// Publish implements tracker.SnapshotSink
func (m *MockSnapshotSink) Publish(s tracker.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
}

// GetSnapshots returns a copy of the published snapshots.
func (m *MockSnapshotSink) GetSnapshots() []tracker.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]tracker.Snapshot, len(m.snapshots))
	copy(result, m.snapshots)
	return result
}

// Last returns the most recent snapshot.
func (m *MockSnapshotSink) Last() (tracker.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.snapshots) == 0 {
		return tracker.Snapshot{}, false
	}
	return m.snapshots[len(m.snapshots)-1], true
}

// MemoryStore is an in-memory tracker.Store.
type MemoryStore struct {
	mu      sync.Mutex
	history session.History
	saves   int
	saveErr error
}

// NewMemoryStore creates a store seeded with h.
func NewMemoryStore(h session.History) *MemoryStore {
	if h == nil {
		h = session.History{}
	}
	return &MemoryStore{history: h}
}

// Load implements tracker.Store
func (m *MemoryStore) Load() session.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(session.History, len(m.history))
	for k, v := range m.history {
		out[k] = session.NewDayRecord(v.Sessions)
	}
	return out
}

// SaveDay implements tracker.Store
func (m *MemoryStore) SaveDay(date string, sessions []session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.history[date] = session.NewDayRecord(sessions)
	return nil
}

// SetError makes SaveDay fail with err.
func (m *MemoryStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// GetSaveCount returns how many times SaveDay was called.
func (m *MemoryStore) GetSaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

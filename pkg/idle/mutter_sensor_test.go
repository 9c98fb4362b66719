package idle

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestMutterSensor_IdleSeconds(t *testing.T) {
	tests := []struct {
		name     string
		ms       uint64
		callErr  error
		wantSecs int
		wantErr  bool
	}{
		{name: "milliseconds truncated", ms: 61500, wantSecs: 61},
		{name: "zero", ms: 0, wantSecs: 0},
		{name: "bus unavailable", callErr: errors.New("failed to connect to session bus"), wantErr: true},
		{name: "service unknown", callErr: &dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := &MutterSensor{
				idletime: func(context.Context) (uint64, error) {
					return tt.ms, tt.callErr
				},
			}

			secs, err := sensor.IdleSeconds(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("IdleSeconds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.callErr) {
				t.Errorf("expected the bus error to be wrapped, got %v", err)
			}
			if secs != tt.wantSecs {
				t.Errorf("IdleSeconds() = %d, want %d", secs, tt.wantSecs)
			}
		})
	}
}

func TestMutterSensor_IsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		owned    bool
		err      error
		expected bool
	}{
		{name: "monitor on the bus", owned: true, expected: true},
		{name: "no gnome shell", owned: false, expected: false},
		{name: "no session bus", err: errors.New("dbus: DBUS_SESSION_BUS_ADDRESS not set"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sensor := &MutterSensor{
				hasMonitor: func(ctx context.Context) (bool, error) {
					if _, ok := ctx.Deadline(); !ok {
						t.Error("availability check should run under a deadline")
					}
					return tt.owned, tt.err
				},
			}
			if got := sensor.IsAvailable(); got != tt.expected {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

package process

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/worktime/pkg/config"
)

type stubLister struct {
	procs []Info
	err   error
	calls int
}

func (s *stubLister) List(context.Context) ([]Info, error) {
	s.calls++
	return s.procs, s.err
}

func TestNewSensorWithLister_NoPatterns(t *testing.T) {
	_, err := NewSensorWithLister(&stubLister{}, []config.Pattern{pattern("off", "^x$", false)})
	if !errors.Is(err, ErrNoPatterns) {
		t.Errorf("expected ErrNoPatterns, got %v", err)
	}
}

func TestSensor_IsRunning(t *testing.T) {
	patterns := []config.Pattern{pattern("code", "^code$", true)}

	tests := []struct {
		name    string
		lister  *stubLister
		want    bool
		wantErr bool
	}{
		{
			name:   "present",
			lister: &stubLister{procs: []Info{{PID: 1, Name: "systemd"}, {PID: 42, Name: "code"}}},
			want:   true,
		},
		{
			name:   "absent",
			lister: &stubLister{procs: []Info{{PID: 1, Name: "systemd"}}},
			want:   false,
		},
		{
			name:   "empty table",
			lister: &stubLister{},
			want:   false,
		},
		{
			name:    "lister fails",
			lister:  &stubLister{err: ErrUnavailable},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSensorWithLister(tt.lister, patterns)
			if err != nil {
				t.Fatal(err)
			}

			got, err := s.IsRunning(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsRunning() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnavailable) {
				t.Errorf("expected wrapped ErrUnavailable, got %v", err)
			}
			if got != tt.want {
				t.Errorf("IsRunning() = %v, want %v", got, tt.want)
			}
			if tt.lister.calls != 1 {
				t.Errorf("expected one List call, got %d", tt.lister.calls)
			}
		})
	}
}

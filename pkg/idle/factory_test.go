package idle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func singleMember(kind string) func(t *testing.T, s any) {
	return func(t *testing.T, s any) {
		chain, ok := s.(*ChainSensor)
		if !ok {
			t.Fatalf("got %T, want *ChainSensor", s)
		}
		if got := chain.Names(); len(got) != 1 || got[0] != kind {
			t.Errorf("Names() = %v, want [%s]", got, kind)
		}
	}
}

func TestNewIdleSensor(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
		check   func(t *testing.T, s any)
	}{
		{kind: KindAuto, check: func(t *testing.T, s any) {
			if _, ok := s.(*ChainSensor); !ok {
				t.Errorf("auto: got %T, want *ChainSensor", s)
			}
		}},
		{kind: "", check: func(t *testing.T, s any) {
			if _, ok := s.(*ChainSensor); !ok {
				t.Errorf("empty kind: got %T, want *ChainSensor", s)
			}
		}},
		{kind: KindNone, check: func(t *testing.T, s any) {
			if _, ok := s.(*StaticSensor); !ok {
				t.Errorf("none: got %T, want *StaticSensor", s)
			}
		}},
		{kind: KindXprintidle, check: singleMember(KindXprintidle)},
		{kind: KindMutter, check: singleMember(KindMutter)},
		{kind: KindTmux, check: singleMember(KindTmux)},
		{kind: KindIoreg, check: singleMember(KindIoreg)},
		{kind: "telepathy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			s, err := NewIdleSensor(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewIdleSensor(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

type stubSensor struct {
	secs      int
	err       error
	available bool
	calls     int
}

func (s *stubSensor) IdleSeconds(context.Context) (int, error) {
	s.calls++
	return s.secs, s.err
}

func (s *stubSensor) IsAvailable() bool {
	return s.available
}

func TestBuildChain_SkipsUnavailable(t *testing.T) {
	present := &stubSensor{secs: 7, available: true}
	missing := &stubSensor{available: false}

	chain := buildChain([]candidate{
		{name: "missing", sensor: missing},
		{name: "present", sensor: present},
	})

	if got := chain.Names(); len(got) != 1 || got[0] != "present" {
		t.Fatalf("Names() = %v, want [present]", got)
	}
	secs, err := chain.IdleSeconds(context.Background())
	if err != nil || secs != 7 {
		t.Errorf("IdleSeconds() = %d, %v; want 7, nil", secs, err)
	}
	if missing.calls != 0 {
		t.Error("unavailable sensor should never be queried")
	}
}

func TestChainSensor_FallsBack(t *testing.T) {
	first := &stubSensor{err: errors.New("no display")}
	second := &stubSensor{secs: 42}

	chain := NewChainSensor().Append("first", first).Append("second", second)

	secs, err := chain.IdleSeconds(context.Background())
	if err != nil {
		t.Fatalf("IdleSeconds() error = %v", err)
	}
	if secs != 42 {
		t.Errorf("IdleSeconds() = %d, want 42", secs)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestChainSensor_AllFailReportsZero(t *testing.T) {
	var logs bytes.Buffer
	chain := NewChainSensor().
		Append("a", &stubSensor{err: errors.New("a broke")}).
		Append("b", &stubSensor{err: errors.New("b broke")})
	chain.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	for i := 0; i < 3; i++ {
		secs, err := chain.IdleSeconds(context.Background())
		if err != nil || secs != 0 {
			t.Fatalf("IdleSeconds() = %d, %v; want 0, nil", secs, err)
		}
	}

	out := logs.String()
	if n := strings.Count(out, "no idle source answered"); n != 1 {
		t.Errorf("expected the failure to be logged once, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "a broke") || !strings.Contains(out, "b broke") {
		t.Errorf("log should carry every member's error: %s", out)
	}
}

func TestChainSensor_LogsAgainAfterRecovery(t *testing.T) {
	var logs bytes.Buffer
	flaky := &stubSensor{err: errors.New("gone")}
	chain := NewChainSensor().Append("flaky", flaky)
	chain.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	_, _ = chain.IdleSeconds(context.Background())
	flaky.err, flaky.secs = nil, 5
	if secs, _ := chain.IdleSeconds(context.Background()); secs != 5 {
		t.Fatalf("IdleSeconds() = %d, want 5", secs)
	}
	flaky.err = errors.New("gone again")
	_, _ = chain.IdleSeconds(context.Background())

	if n := strings.Count(logs.String(), "no idle source answered"); n != 2 {
		t.Errorf("expected one warning per failure run, got %d", n)
	}
}

func TestChainSensor_EmptyReportsZero(t *testing.T) {
	secs, err := NewChainSensor().IdleSeconds(context.Background())
	if err != nil || secs != 0 {
		t.Errorf("IdleSeconds() = %d, %v; want 0, nil", secs, err)
	}
}

func TestChainSensor_StopsOnCancelledContext(t *testing.T) {
	first := &stubSensor{err: context.Canceled}
	second := &stubSensor{secs: 1}
	chain := NewChainSensor().Append("first", first).Append("second", second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := chain.IdleSeconds(ctx); err == nil {
		t.Error("expected error with cancelled context")
	}
	if second.calls != 0 {
		t.Error("chain should stop once the context is done")
	}
}

func TestStaticSensor(t *testing.T) {
	s := NewStaticSensor(0)
	if secs, _ := s.IdleSeconds(context.Background()); secs != 0 {
		t.Errorf("IdleSeconds() = %d, want 0", secs)
	}
	s.Set(300)
	if secs, _ := s.IdleSeconds(context.Background()); secs != 300 {
		t.Errorf("IdleSeconds() = %d, want 300", secs)
	}
}

package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPSLister_List(t *testing.T) {
	output := "    1 /sbin/launchd\n" +
		"  312 /Applications/Visual Studio Code.app/Contents/MacOS/Electron\n" +
		"\n" +
		" junk line\n" +
		"  400 zsh\n"

	var gotArgs []string
	l := &PSLister{cmdExecutor: func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "ps" {
			t.Errorf("unexpected command %s", name)
		}
		gotArgs = args
		return []byte(output), nil
	}}

	procs, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if strings.Join(gotArgs, " ") != "-axo pid=,comm=" {
		t.Errorf("unexpected ps args %v", gotArgs)
	}

	want := []Info{
		{PID: 1, Name: "/sbin/launchd", Exe: "launchd"},
		{PID: 312, Name: "/Applications/Visual Studio Code.app/Contents/MacOS/Electron", Exe: "Electron"},
		{PID: 400, Name: "zsh", Exe: "zsh"},
	}
	if len(procs) != len(want) {
		t.Fatalf("List() = %+v, want %+v", procs, want)
	}
	for i := range want {
		if procs[i] != want[i] {
			t.Errorf("proc %d = %+v, want %+v", i, procs[i], want[i])
		}
	}
}

func TestPSLister_CommandFails(t *testing.T) {
	l := &PSLister{cmdExecutor: func(context.Context, string, ...string) ([]byte, error) {
		return nil, fmt.Errorf("exec: \"ps\": executable file not found")
	}}
	if _, err := l.List(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestPSLister_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &PSLister{cmdExecutor: func(context.Context, string, ...string) ([]byte, error) {
		return nil, fmt.Errorf("signal: killed")
	}}
	if _, err := l.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

package process

import (
	"regexp"
	"testing"

	"github.com/Veraticus/worktime/pkg/config"
)

func pattern(name, expr string, enabled bool) config.Pattern {
	p := config.Pattern{Name: name, Regex: expr, Enabled: enabled}
	if expr != "" {
		p.SetCompiledRegex(regexp.MustCompile(expr))
	}
	return p
}

func TestNewMatcher_FiltersPatterns(t *testing.T) {
	m := NewMatcher([]config.Pattern{
		pattern("code", "^code$", true),
		pattern("disabled", "^vim$", false),
		{Name: "uncompiled", Regex: "^emacs$", Enabled: true},
	})

	if got := len(m.Patterns()); got != 1 {
		t.Fatalf("expected 1 active pattern, got %d", got)
	}
	if m.Patterns()[0].Name != "code" {
		t.Errorf("unexpected pattern %q", m.Patterns()[0].Name)
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher([]config.Pattern{
		pattern("vscode", `^(code|Code Helper|Electron)$`, true),
		pattern("jetbrains", `^(idea|goland)(64)?$`, true),
	})

	tests := []struct {
		name    string
		info    Info
		want    string
		matched bool
	}{
		{name: "comm match", info: Info{Name: "code"}, want: "vscode", matched: true},
		{name: "full path from ps", info: Info{Name: "/Applications/Visual Studio Code.app/Contents/MacOS/Electron"}, want: "vscode", matched: true},
		{name: "truncated comm, argv0 matches", info: Info{Name: "goland.sh-wrapp", Exe: "goland64"}, want: "jetbrains", matched: true},
		{name: "substring is not enough", info: Info{Name: "vscode-server"}, matched: false},
		{name: "no match", info: Info{Name: "bash", Exe: "bash"}, matched: false},
		{name: "empty", info: Info{}, matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Match(tt.info)
			if ok != tt.matched {
				t.Fatalf("Match() matched = %v, want %v", ok, tt.matched)
			}
			if got != tt.want {
				t.Errorf("Match() = %q, want %q", got, tt.want)
			}
		})
	}
}

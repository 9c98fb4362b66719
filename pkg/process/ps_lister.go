package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// PSLister runs ps(1). It is used where /proc is not available.
type PSLister struct {
	cmdExecutor cmdExecutor
}

// NewPSLister creates a ps-backed lister.
func NewPSLister() *PSLister {
	return &PSLister{cmdExecutor: defaultCmdExecutor}
}

// List parses "ps -axo pid=,comm=". comm may be a full path containing spaces.
func (l *PSLister) List(ctx context.Context) ([]Info, error) {
	output, err := l.cmdExecutor(ctx, "ps", "-axo", "pid=,comm=")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: ps: %v", ErrUnavailable, err)
	}

	var procs []Info
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		pidField, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(pidField)
		if err != nil {
			continue
		}
		comm := strings.TrimSpace(rest)
		if comm == "" {
			continue
		}
		procs = append(procs, Info{PID: pid, Name: comm, Exe: filepath.Base(comm)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ps output: %w", err)
	}
	return procs, nil
}

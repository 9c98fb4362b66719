package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ProcLister reads the Linux /proc filesystem.
type ProcLister struct {
	root string
}

// NewProcLister creates a lister rooted at /proc.
func NewProcLister() *ProcLister {
	return &ProcLister{root: "/proc"}
}

// List returns every process whose comm file could be read. Processes that
// exit during the scan are skipped.
func (l *ProcLister) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	procs := make([]Info, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() {
			continue
		}

		dir := filepath.Join(l.root, e.Name())
		comm, err := os.ReadFile(filepath.Join(dir, "comm"))
		if err != nil {
			continue
		}
		info := Info{PID: pid, Name: strings.TrimSpace(string(comm))}

		// Kernel threads have an empty cmdline.
		if cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil && len(cmdline) > 0 {
			argv0, _, _ := bytes.Cut(cmdline, []byte{0})
			if len(argv0) > 0 {
				info.Exe = filepath.Base(string(argv0))
			}
		}
		procs = append(procs, info)
	}
	return procs, nil
}

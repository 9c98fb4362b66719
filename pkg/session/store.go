package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	dataDirPerm  os.FileMode = 0o700
	dataFilePerm os.FileMode = 0o600
)

var errCorrupt = errors.New("session file is corrupt")

// Store persists a History as a single JSON file. Every write replaces the
// whole file; there is no locking against other writers.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store backed by the file at path. The file and its
// directory are created on first save.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full history. A missing file yields an empty history;
// an unreadable or corrupt file is logged and also yields an empty history.
func (s *Store) Load() History {
	h, err := s.read()
	if err != nil {
		s.logger.Warn("load session history", "path", s.path, "error", err)
		return History{}
	}
	return h
}

// SaveDay re-reads the file, replaces the entry for date with sessions and
// writes the whole history back. Entries for other dates are untouched.
func (s *Store) SaveDay(date string, sessions []Session) error {
	h, err := s.read()
	if err != nil {
		if !errors.Is(err, errCorrupt) {
			return fmt.Errorf("read session history: %w", err)
		}
		s.quarantine(err)
		h = History{}
	}
	h[date] = NewDayRecord(sessions)
	return s.write(h)
}

// Save writes h in full, recomputing every cached total.
func (s *Store) Save(h History) error {
	out := make(History, len(h))
	for date, rec := range h {
		out[date] = NewDayRecord(rec.Sessions)
	}
	return s.write(out)
}

func (s *Store) read() (History, error) {
	// #nosec G304 - the data file path comes from configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return History{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return History{}, nil
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if h == nil {
		h = History{}
	}
	return h, nil
}

// quarantine moves a corrupt file aside so the next write does not destroy it.
func (s *Store) quarantine(cause error) {
	dst := fmt.Sprintf("%s.corrupt.%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, dst); err != nil {
		s.logger.Warn("move corrupt session file aside", "path", s.path, "error", err)
		return
	}
	s.logger.Warn("corrupt session file moved aside", "path", s.path, "moved_to", dst, "cause", cause)
}

func (s *Store) write(h History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session history: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename has succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, dataFilePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Veraticus/worktime/pkg/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	date TEXT NOT NULL,
	start_at TEXT NOT NULL,
	end_at TEXT NOT NULL,
	duration_seconds INTEGER NOT NULL,
	PRIMARY KEY (date, start_at)
);
CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
CREATE VIEW IF NOT EXISTS daily_totals AS
	SELECT date, SUM(duration_seconds) AS total_seconds, COUNT(*) AS session_count
	FROM sessions GROUP BY date;
`

// ToSQLite writes h into the database at path, creating it if needed.
// Dates present in h replace their earlier rows; other dates are kept.
func ToSQLite(ctx context.Context, path string, h session.History) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("exec pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for date := range h {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE date = ?", date); err != nil {
			return fmt.Errorf("clear %s: %w", date, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO sessions (date, start_at, end_at, duration_seconds) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows(h) {
		_, err := stmt.ExecContext(ctx, r.Date,
			r.Start.UTC().Format(time.RFC3339Nano),
			r.End.UTC().Format(time.RFC3339Nano),
			r.Duration)
		if err != nil {
			return fmt.Errorf("insert session %s: %w", r.Start, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

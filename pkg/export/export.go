// Package export writes the session history in other formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/Veraticus/worktime/pkg/session"
)

// Format names accepted by Write.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// row is one session flattened with its date.
type row struct {
	Date     string
	Start    time.Time
	End      time.Time
	Duration int64
}

// rows flattens h in date order, then start order.
func rows(h session.History) []row {
	dates := make([]string, 0, len(h))
	for d := range h {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var out []row
	for _, d := range dates {
		sessions := append([]session.Session(nil), h[d].Sessions...)
		sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Start.Before(sessions[j].Start) })
		for _, s := range sessions {
			out = append(out, row{Date: d, Start: s.Start, End: s.End, Duration: s.Duration})
		}
	}
	return out
}

// ToCSV writes one line per session with a header row.
func ToCSV(w io.Writer, h session.History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "start", "end", "duration_seconds"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows(h) {
		rec := []string{
			r.Date,
			r.Start.UTC().Format(time.RFC3339),
			r.End.UTC().Format(time.RFC3339),
			strconv.FormatInt(r.Duration, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToJSON writes the history in the on-disk session file layout, with totals
// recomputed.
func ToJSON(w io.Writer, h session.History) error {
	out := make(session.History, len(h))
	for d, rec := range h {
		out[d] = session.NewDayRecord(rec.Sessions)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Write dispatches on format. SQLite needs a file path, so it is handled
// by ToSQLite directly.
func Write(w io.Writer, format string, h session.History) error {
	switch format {
	case FormatCSV:
		return ToCSV(w, h)
	case FormatJSON:
		return ToJSON(w, h)
	default:
		return fmt.Errorf("unsupported stream format %q", format)
	}
}

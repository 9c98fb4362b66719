// Package report renders stored sessions for the history and today commands.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/worktime/pkg/session"
	"github.com/Veraticus/worktime/pkg/tracker"
)

// DaySummary is one row of the history table.
type DaySummary struct {
	Date         string
	TotalSeconds int64
	Sessions     []session.Session
}

// Summaries returns one summary per stored date, newest first. Totals are
// recomputed from the sessions rather than trusted from the file.
func Summaries(h session.History) []DaySummary {
	out := make([]DaySummary, 0, len(h))
	for date, rec := range h {
		out = append(out, DaySummary{
			Date:         date,
			TotalSeconds: session.SumDurations(rec.Sessions),
			Sessions:     rec.Sessions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Options control RenderHistory.
type Options struct {
	// Days limits output to the most recent N dates; zero means all.
	Days int
	// Sessions lists individual sessions under each date.
	Sessions bool
	// Goal draws a progress bar against this daily target when positive.
	Goal time.Duration
}

type styles struct {
	header lipgloss.Style
	muted  lipgloss.Style
	bar    lipgloss.Style
	total  lipgloss.Style
}

// newStyles colours output only when w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#666666")),
		bar:    r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		total:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7")),
	}
}

// RenderHistory writes a per-day table of h to w.
func RenderHistory(w io.Writer, h session.History, opts Options) error {
	st := newStyles(w)
	days := Summaries(h)
	if opts.Days > 0 && len(days) > opts.Days {
		days = days[:opts.Days]
	}

	if len(days) == 0 {
		_, err := fmt.Fprintln(w, st.muted.Render("No sessions recorded yet."))
		return err
	}

	var b strings.Builder
	b.WriteString(st.header.Render(fmt.Sprintf("%-12s %10s %8s", "Date", "Worked", "Sessions")))
	if opts.Goal > 0 {
		b.WriteString(st.header.Render("  Goal"))
	}
	b.WriteString("\n")
	b.WriteString(st.muted.Render(strings.Repeat("─", 32)))
	b.WriteString("\n")

	var grand int64
	for _, d := range days {
		grand += d.TotalSeconds
		fmt.Fprintf(&b, "%-12s %10s %8d", d.Date, tracker.FormatSeconds(d.TotalSeconds), len(d.Sessions))
		if opts.Goal > 0 {
			b.WriteString("  " + progressBar(st, d.TotalSeconds, opts.Goal, 20))
		}
		b.WriteString("\n")

		if opts.Sessions {
			for _, s := range d.Sessions {
				b.WriteString(st.muted.Render(fmt.Sprintf("  %s-%s %10s",
					s.Start.Local().Format("15:04"), s.End.Local().Format("15:04"),
					tracker.FormatSeconds(s.Duration))))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(st.muted.Render(strings.Repeat("─", 32)))
	b.WriteString("\n")
	b.WriteString(st.total.Render(fmt.Sprintf("%-12s %10s", "Total", tracker.FormatSeconds(grand))))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// progressBar draws secs against goal, capped at full.
func progressBar(st styles, secs int64, goal time.Duration, width int) string {
	pct := int(secs * 100 / int64(goal/time.Second))
	pct = min(pct, 100)
	filled := pct * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return st.bar.Render(bar) + fmt.Sprintf(" %3d%%", pct)
}

// Today returns the worked seconds and sessions for the local date of now,
// clipped to that day.
func Today(h session.History, now time.Time) (int64, []session.Session) {
	rec, ok := h[session.DateKey(now)]
	if !ok {
		return 0, nil
	}
	return session.DayTotal(rec.Sessions, now), rec.Sessions
}

// RenderToday writes the sessions of now's date and the day total to w.
func RenderToday(w io.Writer, h session.History, now time.Time, opts Options) error {
	st := newStyles(w)
	total, sessions := Today(h, now)

	var b strings.Builder
	b.WriteString(st.header.Render(now.Format("Monday, Jan 2 2006")))
	b.WriteString("\n")
	for _, s := range sessions {
		fmt.Fprintf(&b, "  %s-%s %10s\n",
			s.Start.Local().Format("15:04"), s.End.Local().Format("15:04"),
			tracker.FormatSeconds(s.Duration))
	}
	if len(sessions) == 0 {
		b.WriteString(st.muted.Render("  no sessions"))
		b.WriteString("\n")
	}
	b.WriteString(st.total.Render("Worked today: " + tracker.FormatSeconds(total)))
	if opts.Goal > 0 {
		b.WriteString("  " + progressBar(st, total, opts.Goal, 20))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

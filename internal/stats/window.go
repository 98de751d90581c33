package stats

import (
	"time"

	"github.com/lab-portal/backend/internal/models"
)

// Window selects how far back the session timeline reaches.
type Window string

const (
	WindowDay   Window = "day"   // last 24 hours
	WindowWeek  Window = "week"  // last 7 days
	WindowMonth Window = "month" // last 30 days
	WindowAll   Window = "all"   // everything
)

// ParseWindow maps a query-string selector to a Window, defaulting to
// all-time for unknown values.
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowDay, WindowWeek, WindowMonth:
		return Window(s)
	default:
		return WindowAll
	}
}

// Duration returns the window length, or 0 for all-time.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// FilterRows keeps sessions whose start time falls inside the window,
// inclusive on the boundary. Sessions are retained by start time only:
// one starting inside the window but ending far outside it stays fully
// included. Relative order is preserved.
func FilterRows(rows []models.SessionRow, w Window, now time.Time) []models.SessionRow {
	d := w.Duration()
	if d == 0 {
		return rows
	}
	cutoff := now.Add(-d)

	filtered := make([]models.SessionRow, 0, len(rows))
	for _, row := range rows {
		if !row.TimeIn.Before(cutoff) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

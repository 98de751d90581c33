package stats

import (
	"time"

	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/parser"
)

// Report is the output of one aggregation pass over a session log.
// PerUser is keyed by display name: two records sharing a name merge
// their totals, matching the exported access table where the name is
// the only human-readable key.
type Report struct {
	PerUser    map[string]*models.UserStats `json:"stats"`
	Rows       []models.SessionRow          `json:"rows"`
	UsageByDay map[string]int               `json:"usageByDay"`
}

// Aggregate folds a session log into per-user totals, resolved session
// rows, and weekday usage counts. Entries whose address matches no
// access record are dropped entirely: such sessions cannot be
// attributed, so they contribute to neither totals nor buckets.
//
// now substitutes for the exit time of still-open sessions, so open
// session durations grow on every recomputation. Durations are not
// clamped: a malformed entry with out before in yields a negative
// duration that flows through to the totals unchanged.
func Aggregate(entries []models.SessionEntry, access models.AccessTable, now time.Time) *Report {
	report := &Report{
		PerUser:    make(map[string]*models.UserStats),
		Rows:       make([]models.SessionRow, 0, len(entries)),
		UsageByDay: make(map[string]int),
	}

	for _, entry := range entries {
		user, ok := ResolveIP(entry.IP, access)
		if !ok {
			continue
		}

		tIn, err := parser.ParseLogTime(entry.In)
		if err != nil {
			continue
		}
		tOut := now
		if entry.Out != "" {
			if tOut, err = parser.ParseLogTime(entry.Out); err != nil {
				continue
			}
		}
		duration := tOut.Sub(tIn).Minutes()

		st := report.PerUser[user.Name]
		if st == nil {
			st = &models.UserStats{}
			report.PerUser[user.Name] = st
		}
		st.Sessions++
		st.TotalMinutes += duration
		st.AddIP(entry.IP)
		st.Durations = append(st.Durations, duration)

		report.Rows = append(report.Rows, models.SessionRow{
			User:     user.Name,
			IP:       entry.IP,
			TimeIn:   tIn,
			TimeOut:  tOut,
			Duration: duration,
		})

		report.UsageByDay[tIn.Weekday().String()]++
	}

	return report
}

// Users returns the aggregated user names in first-seen row order.
func (r *Report) Users() []string {
	seen := make(map[string]bool, len(r.PerUser))
	users := make([]string, 0, len(r.PerUser))
	for _, row := range r.Rows {
		if !seen[row.User] {
			seen[row.User] = true
			users = append(users, row.User)
		}
	}
	return users
}

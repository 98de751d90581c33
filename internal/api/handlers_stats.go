package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/stats"
)

// UserSummary is one user's aggregated usage for the dashboard.
type UserSummary struct {
	Name         string   `json:"name"`
	Sessions     int      `json:"sessions"`
	Hours        int      `json:"hours"`
	Minutes      int      `json:"minutes"`
	TotalMinutes float64  `json:"totalMinutes"`
	IPs          []string `json:"ips"`
	StorageGB    float64  `json:"storageGb"`
}

// HandleStatistics aggregates the agent's session log into the usage
// dashboard payload. Both the session log and the access table must
// fetch successfully: a failure of either aborts the whole request
// rather than serving a partially resolved report.
func (h *Handler) HandleStatistics(c echo.Context) error {
	ctx := c.Request().Context()

	sessions, err := h.agent.Sessions(ctx)
	if err != nil {
		return NewBadGatewayError("failed to fetch session log", err)
	}
	accessTable, err := h.agent.AccessTable(ctx)
	if err != nil {
		return NewBadGatewayError("failed to fetch access table", err)
	}

	now := h.now()
	window := stats.ParseWindow(c.QueryParam("window"))

	report := stats.Aggregate(sessions, accessTable, now)

	// The window scopes the timeline only. Summaries, usage bars, and
	// the weekday buckets always cover the full session log, so a
	// narrow window never zeroes the totals column.
	windowed := stats.FilterRows(report.Rows, window, now)

	storage := h.storageByName(c)
	names := report.Users()
	summaries := make([]UserSummary, 0, len(names))
	minutes := make([]float64, 0, len(names))
	for _, name := range names {
		st := report.PerUser[name]
		whole := int(st.TotalMinutes)
		summaries = append(summaries, UserSummary{
			Name:         name,
			Sessions:     st.Sessions,
			Hours:        whole / 60,
			Minutes:      whole % 60,
			TotalMinutes: st.TotalMinutes,
			IPs:          st.IPs,
			StorageGB:    storage[name],
		})
		minutes = append(minutes, st.TotalMinutes)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"window":     string(window),
		"users":      summaries,
		"usageBars":  stats.Bars(names, minutes),
		"usageByDay": stats.UsageByDayBars(report.UsageByDay),
		"timeline":   stats.Timeline(windowed),
	})
}

// storageByName maps display name to reported server storage in GB.
// A store failure degrades to zero storage rather than failing the
// whole statistics request.
func (h *Handler) storageByName(c echo.Context) map[string]float64 {
	users, err := h.store.List(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("listing users for storage column: %v", err)
		return nil
	}
	out := make(map[string]float64, len(users))
	for _, u := range users {
		out[u.Name] = float64(u.ServerStorage) / 1024
	}
	return out
}

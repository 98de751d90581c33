package api

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/stats"
	"github.com/lab-portal/backend/internal/telemetry"
)

// ConnectionView is one live connection joined back to its user.
type ConnectionView struct {
	User        string `json:"user"`
	IP          string `json:"ip"`
	Kind        string `json:"kind"`
	ConnectedAt string `json:"connectedAt"`
}

// HandleOverview returns the server overview panel: liveness, resource
// gauges, uptime, and active connections. An offline server keeps its
// last telemetry but reports no connections, since the connection list
// is only as fresh as the last successful poll.
func (h *Handler) HandleOverview(c echo.Context) error {
	snap, ok := h.latestSnapshot(c)
	if !ok {
		return NewServiceUnavailableError("telemetry not yet available")
	}

	body := map[string]interface{}{
		"online":      snap.Online,
		"fetchedAt":   snap.FetchedAt,
		"connections": []ConnectionView{},
	}

	if snap.Telemetry != nil {
		days, hours := snap.Telemetry.UptimeDaysHours()
		body["memory"] = snap.Telemetry.Memory
		body["disk"] = snap.Telemetry.Disk
		body["cpuTemperature"] = snap.Telemetry.CPUTemperature
		body["uptime"] = map[string]int{"days": days, "hours": hours}
		body["lastUpdated"] = snap.Telemetry.LastUpdated

		if snap.Online {
			body["connections"] = h.connectionViews(c, snap.Telemetry)
		}
	}

	return c.JSON(http.StatusOK, body)
}

// latestSnapshot prefers the poller's cache and falls back to a direct
// agent fetch when nothing has been polled yet.
func (h *Handler) latestSnapshot(c echo.Context) (telemetry.Snapshot, bool) {
	if h.poller != nil {
		if snap, ok := h.poller.Latest(); ok {
			return snap, true
		}
	}

	now := h.now()
	t, err := h.agent.Stats(c.Request().Context(), h.statsFile)
	if err != nil {
		c.Logger().Warnf("direct telemetry fetch: %v", err)
		return telemetry.Snapshot{FetchedAt: now, Err: err}, true
	}
	return telemetry.Snapshot{
		Telemetry: t,
		Online:    telemetry.IsOnline(t.LastUpdated, h.agentZone, now),
		FetchedAt: now,
	}, true
}

// connectionViews joins the raw connection map to user names and labels
// each connection by port: 22 is SSH, everything else Remote Desktop.
func (h *Handler) connectionViews(c echo.Context, t *models.ServerTelemetry) []ConnectionView {
	names := map[string]string{}
	if users, err := h.store.List(c.Request().Context()); err == nil {
		names = stats.IPNameMap(users)
	} else {
		c.Logger().Warnf("listing users for connection join: %v", err)
	}

	out := make([]ConnectionView, 0, len(t.ActiveConnections))
	for ip, conn := range t.ActiveConnections {
		kind := "Remote Desktop"
		if conn.Port == 22 {
			kind = "SSH"
		}
		name := names[ip]
		if name == "" {
			name = "Unknown"
		}
		out = append(out, ConnectionView{
			User:        name,
			IP:          ip,
			Kind:        kind,
			ConnectedAt: conn.ConnectedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IP < out[j].IP })
	return out
}

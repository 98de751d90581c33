package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overviewResponse struct {
	Online      bool             `json:"online"`
	LastUpdated string           `json:"lastUpdated"`
	Uptime      map[string]int   `json:"uptime"`
	Connections []ConnectionView `json:"connections"`
}

func telemetryFixture(lastUpdated string) *models.ServerTelemetry {
	return &models.ServerTelemetry{
		Memory:         models.ResourceUsage{PercentUsed: "38%", Used: "12.4G", Total: "32G"},
		Disk:           models.ResourceUsage{PercentUsed: "71%", Used: "1.4T", Total: "2T"},
		CPUTemperature: 54.5,
		Uptime:         models.Uptime{Hours: 50},
		LastUpdated:    lastUpdated,
		ActiveConnections: map[string]models.ActiveConnection{
			"10.144.172.10": {ConnectedAt: "2025-03-10 11:58:01", Port: 22},
			"10.144.172.11": {ConnectedAt: "2025-03-10 11:40:30", Port: 3389},
		},
	}
}

func TestHandleOverviewOnline(t *testing.T) {
	f := newFixture(t)
	e := echo.New()

	// a minute old relative to the fixture clock (Mar 10 2025, 12:00 UTC)
	f.agent.Telemetry = telemetryFixture("11:59 AM; March 10, 2025")
	f.store.Seed(
		models.User{ID: "u1", Name: "Alice", IP: "10.144.172.10"},
		models.User{ID: "u2", Name: "Bob", IP: "10.144.172.11"},
	)

	c, rec := request(e, http.MethodGet, "/api/overview", "")
	asUser(c, adminUser())
	require.NoError(t, f.handler.HandleOverview(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp overviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Online)
	assert.Equal(t, 2, resp.Uptime["days"])
	assert.Equal(t, 2, resp.Uptime["hours"])

	require.Len(t, resp.Connections, 2)
	assert.Equal(t, "Alice", resp.Connections[0].User)
	assert.Equal(t, "SSH", resp.Connections[0].Kind)
	assert.Equal(t, "Bob", resp.Connections[1].User)
	assert.Equal(t, "Remote Desktop", resp.Connections[1].Kind)
}

func TestHandleOverviewStaleTelemetryIsOffline(t *testing.T) {
	f := newFixture(t)
	e := echo.New()

	// five minutes past the staleness threshold
	f.agent.Telemetry = telemetryFixture("11:55 AM; March 10, 2025")

	c, rec := request(e, http.MethodGet, "/api/overview", "")
	asUser(c, adminUser())
	require.NoError(t, f.handler.HandleOverview(c))

	var resp overviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Online)
	// an offline server reports no connections even if the stale
	// payload still lists some
	assert.Empty(t, resp.Connections)
}

func TestHandleOverviewUnknownConnection(t *testing.T) {
	f := newFixture(t)
	e := echo.New()

	f.agent.Telemetry = telemetryFixture("11:59 AM; March 10, 2025")

	c, rec := request(e, http.MethodGet, "/api/overview", "")
	asUser(c, adminUser())
	require.NoError(t, f.handler.HandleOverview(c))

	var resp overviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Connections, 2)
	for _, conn := range resp.Connections {
		assert.Equal(t, "Unknown", conn.User)
	}
}

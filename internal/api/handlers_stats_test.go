package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lab-portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsResponse struct {
	Window     string        `json:"window"`
	Users      []UserSummary `json:"users"`
	UsageByDay []struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	} `json:"usageByDay"`
	Timeline []struct {
		User string `json:"user"`
		Bars []struct {
			Left  float64 `json:"left"`
			Width float64 `json:"width"`
		} `json:"bars"`
	} `json:"timeline"`
}

func TestHandleStatistics(t *testing.T) {
	f := newFixture(t)
	e := echo.New()

	f.agent.Access = models.AccessTable{
		"1234": {Name: "Alice", IP: "10.144.172.10"},
	}
	f.agent.SessionLog = []models.SessionEntry{
		{IP: "10.144.172.10", In: "2025-03-10 10:00:00", Out: "2025-03-10 11:30:00"},
		{IP: "10.99.0.1", In: "2025-03-10 10:00:00", Out: "2025-03-10 10:05:00"}, // unresolvable
	}
	f.store.Seed(models.User{ID: "u1", Name: "Alice", ServerStorage: 2048})

	c, rec := request(e, http.MethodGet, "/api/statistics", "")
	asUser(c, adminUser())
	require.NoError(t, f.handler.HandleStatistics(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Users, 1)
	alice := resp.Users[0]
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, 1, alice.Sessions)
	assert.Equal(t, 1, alice.Hours)
	assert.Equal(t, 30, alice.Minutes)
	assert.InDelta(t, 90, alice.TotalMinutes, 0.001)
	assert.Equal(t, []string{"10.144.172.10"}, alice.IPs)
	assert.InDelta(t, 2.0, alice.StorageGB, 0.001)

	// Monday bucket carries the session
	for _, day := range resp.UsageByDay {
		if day.Label == "Monday" {
			assert.Equal(t, 1.0, day.Value)
		} else {
			assert.Equal(t, 0.0, day.Value)
		}
	}

	// single session renders full width
	require.Len(t, resp.Timeline, 1)
	require.Len(t, resp.Timeline[0].Bars, 1)
	assert.Equal(t, 0.0, resp.Timeline[0].Bars[0].Left)
	assert.Equal(t, 100.0, resp.Timeline[0].Bars[0].Width)
}

// The window narrows the timeline only: totals and weekday buckets
// always describe the full session log.
func TestHandleStatisticsWindowScopesTimelineOnly(t *testing.T) {
	f := newFixture(t)
	e := echo.New()

	f.agent.Access = models.AccessTable{
		"1234": {Name: "Alice", IP: "10.144.172.10"},
	}
	f.agent.SessionLog = []models.SessionEntry{
		{IP: "10.144.172.10", In: "2025-03-10 10:00:00", Out: "2025-03-10 11:00:00"},
		{IP: "10.144.172.10", In: "2025-02-01 10:00:00", Out: "2025-02-01 11:00:00"}, // Saturday, five weeks back
	}

	c, rec := request(e, http.MethodGet, "/api/statistics?window=day", "")
	asUser(c, adminUser())
	require.NoError(t, f.handler.HandleStatistics(c))

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "day", resp.Window)

	// both sessions count toward totals and buckets
	require.Len(t, resp.Users, 1)
	assert.Equal(t, 2, resp.Users[0].Sessions)
	days := make(map[string]float64)
	for _, day := range resp.UsageByDay {
		days[day.Label] = day.Value
	}
	assert.Equal(t, 1.0, days["Monday"])
	assert.Equal(t, 1.0, days["Saturday"])

	// only the in-window session makes the timeline
	require.Len(t, resp.Timeline, 1)
	require.Len(t, resp.Timeline[0].Bars, 1)
}

func TestHandleStatisticsAgentFailureAborts(t *testing.T) {
	f := newFixture(t)
	e := echo.New()

	f.agent.SessionLog = []models.SessionEntry{
		{IP: "10.144.172.10", In: "2025-03-10 10:00:00", Out: ""},
	}
	f.agent.AccessErr = errors.New("agent down")

	c, _ := request(e, http.MethodGet, "/api/statistics", "")
	asUser(c, adminUser())

	err := f.handler.HandleStatistics(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

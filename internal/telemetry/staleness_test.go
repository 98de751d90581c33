package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLastUpdated(t *testing.T) {
	zone, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	ts, err := ParseLastUpdated("09:15 AM; March 01, 2024", zone)
	require.NoError(t, err)

	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, time.March, ts.Month())
	assert.Equal(t, 1, ts.Day())
	assert.Equal(t, 9, ts.Hour())
	assert.Equal(t, 15, ts.Minute())
	assert.Equal(t, zone, ts.Location())
}

func TestParseLastUpdated_PM(t *testing.T) {
	ts, err := ParseLastUpdated("11:59 PM; December 31, 2023", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 23, ts.Hour())
}

func TestIsOnline(t *testing.T) {
	zone := time.UTC
	now := time.Date(2024, 3, 1, 9, 15, 0, 0, zone)

	tests := []struct {
		name        string
		lastUpdated string
		want        bool
	}{
		{"one minute old", "09:14 AM; March 01, 2024", true},
		{"exactly two minutes old", "09:13 AM; March 01, 2024", true},
		{"five minutes old", "09:10 AM; March 01, 2024", false},
		{"a day old", "09:15 AM; February 29, 2024", false},
		{"unparseable", "yesterday-ish", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOnline(tt.lastUpdated, zone, now))
		})
	}
}

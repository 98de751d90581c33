// Package telemetry owns server liveness: the freshness check on the
// agent's last_updated stamp and the periodic poll loop feeding the
// dashboard. There is no heartbeat protocol; freshness-of-last-write is
// the only liveness signal the monitored servers have.
package telemetry

import (
	"time"
)

// LastUpdatedLayout is the agent's last_updated format,
// e.g. "09:15 AM; March 01, 2024".
const LastUpdatedLayout = "03:04 PM; January 02, 2006"

// StaleAfter is the gap beyond which the last telemetry write is taken
// as evidence the monitored server is powered off.
const StaleAfter = 2 * time.Minute

// ParseLastUpdated parses a last_updated stamp in the agent's zone.
func ParseLastUpdated(s string, agentZone *time.Location) (time.Time, error) {
	return time.ParseInLocation(LastUpdatedLayout, s, agentZone)
}

// IsOnline reports whether the telemetry write is fresh enough to call
// the server online. An unparseable stamp counts as offline.
func IsOnline(lastUpdated string, agentZone *time.Location, now time.Time) bool {
	ts, err := ParseLastUpdated(lastUpdated, agentZone)
	if err != nil {
		return false
	}
	return now.Sub(ts) <= StaleAfter
}

package models

import "time"

// SessionEntry is one raw connection interval from the agent's
// connection_sessions.json. Out is empty while the session is still open.
type SessionEntry struct {
	IP  string `json:"ip"`
	In  string `json:"in"`
	Out string `json:"out,omitempty"`
}

// SessionRow is a SessionEntry resolved to a user and converted to
// instants. Duration is in minutes, possibly fractional; for an open
// session it is measured against the aggregation's "now" and therefore
// grows on every recomputation.
type SessionRow struct {
	User     string    `json:"user"`
	IP       string    `json:"ip"`
	TimeIn   time.Time `json:"t_in"`
	TimeOut  time.Time `json:"t_out"`
	Duration float64   `json:"duration"`
}

// UserStats accumulates per-user session totals during one
// aggregation pass.
type UserStats struct {
	Sessions     int       `json:"sessions"`
	TotalMinutes float64   `json:"total_minutes"`
	IPs          []string  `json:"ips"`
	Durations    []float64 `json:"durations"`
}

// AddIP records an address in the distinct-IP set, preserving first-seen order.
func (s *UserStats) AddIP(ip string) {
	for _, known := range s.IPs {
		if known == ip {
			return
		}
	}
	s.IPs = append(s.IPs, ip)
}

// Weekdays in the order the usage-by-day report presents them.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

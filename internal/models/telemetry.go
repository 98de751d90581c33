package models

// ResourceUsage is a used/total pair as the agent reports it.
// Values are preformatted strings ("12.4G", "38%") passed through to
// the dashboard untouched.
type ResourceUsage struct {
	PercentUsed string `json:"percent_used"`
	Used        string `json:"used"`
	Total       string `json:"total"`
}

// Uptime is the agent's uptime report.
type Uptime struct {
	Hours int `json:"hours"`
}

// ActiveConnection is one live connection as reported by the agent,
// keyed by source address in ServerTelemetry.ActiveConnections.
type ActiveConnection struct {
	ConnectedAt string `json:"connected_at"`
	Port        int    `json:"port"`
}

// ServerTelemetry is the agent's stats payload. LastUpdated is a
// "hh:mm AM; Month dd, yyyy" string in the agent's local zone; its
// freshness is the sole liveness signal for the monitored server.
type ServerTelemetry struct {
	Memory            ResourceUsage               `json:"memory"`
	Disk              ResourceUsage               `json:"disk"`
	CPUTemperature    float64                     `json:"cpu_temperature"`
	Uptime            Uptime                      `json:"uptime"`
	LastUpdated       string                      `json:"last_updated"`
	ActiveConnections map[string]ActiveConnection `json:"active_connections"`
}

// UptimeDaysHours splits the reported uptime into whole days and
// remaining hours for display.
func (t *ServerTelemetry) UptimeDaysHours() (days, hours int) {
	return t.Uptime.Hours / 24, t.Uptime.Hours % 24
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// LogTimeLayout is the timestamp layout used throughout the agent's
// command log and session log ("yyyy-MM-dd HH:mm:ss").
const LogTimeLayout = "2006-01-02 15:04:05"

// CommandEntry is one parsed line of the server command log.
// Timestamp keeps the literal token from the log; Time is the parsed
// value (zero when the token does not parse).
type CommandEntry struct {
	IP        string    `json:"ip" msgpack:"ip"`
	CommandID string    `json:"commandId" msgpack:"commandId"`
	Timestamp string    `json:"timestamp" msgpack:"timestamp"`
	Command   string    `json:"command" msgpack:"command"`
	Time      time.Time `json:"-" msgpack:"-"`
}

// Line reconstructs the log line the entry was parsed from.
func (e CommandEntry) Line() string {
	return fmt.Sprintf("%s - %s %s %s", e.IP, e.CommandID, e.Timestamp, e.Command)
}

// SplitIPList splits a semicolon-joined address list into trimmed,
// non-empty tokens.
func SplitIPList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

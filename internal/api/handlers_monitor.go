package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/parser"
	"github.com/lab-portal/backend/internal/stats"
)

const (
	defaultCommandLimit = 100
	maxCommandLimit     = 1000
)

// MonitorEntry is one command-log line resolved to its user.
type MonitorEntry struct {
	User      string `json:"user" msgpack:"user"`
	IP        string `json:"ip" msgpack:"ip"`
	CommandID string `json:"commandId" msgpack:"commandId"`
	Timestamp string `json:"timestamp" msgpack:"timestamp"`
	Command   string `json:"command" msgpack:"command"`
}

// HandleMonitorCommands returns the parsed command log, newest first.
// Non-admin callers only ever see commands issued from their own
// addresses regardless of the filters they pass.
func (h *Handler) HandleMonitorCommands(c echo.Context) error {
	entries, err := h.monitorEntries(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// HandleMonitorCommandsMsgpack is the MessagePack variant of the
// command log, 30-50% smaller than JSON for long histories.
func (h *Handler) HandleMonitorCommandsMsgpack(c echo.Context) error {
	entries, err := h.monitorEntries(c)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *Handler) monitorEntries(c echo.Context) ([]MonitorEntry, error) {
	ctx := c.Request().Context()

	text, err := h.agent.CommandLog(ctx)
	if err != nil {
		return nil, NewBadGatewayError("failed to fetch command log", err)
	}
	users, err := h.store.List(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list users", err)
	}
	names := stats.IPNameMap(users)

	limit := defaultCommandLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxCommandLimit {
		limit = maxCommandLimit
	}

	caller := CurrentUser(c)
	var ownIPs map[string]bool
	if caller != nil && caller.Type != models.UserTypeAdmin {
		ownIPs = make(map[string]bool)
		for _, ip := range caller.IPList() {
			ownIPs[ip] = true
		}
	}

	userFilter := c.QueryParam("user")
	ipFilter := c.QueryParam("ip")
	idFilter := c.QueryParam("commandId")
	commandFilter := strings.ToLower(c.QueryParam("command"))
	dateFilter := c.QueryParam("date")
	search := strings.ToLower(c.QueryParam("search"))

	parsed := parser.ParseCommandLog(text)
	out := make([]MonitorEntry, 0, limit)
	for _, entry := range parsed {
		if ownIPs != nil && !ownIPs[entry.IP] {
			continue
		}
		name := names[entry.IP]
		if userFilter != "" && !strings.EqualFold(name, userFilter) {
			continue
		}
		if ipFilter != "" && entry.IP != ipFilter {
			continue
		}
		if idFilter != "" && entry.CommandID != idFilter {
			continue
		}
		if commandFilter != "" && !strings.Contains(strings.ToLower(entry.Command), commandFilter) {
			continue
		}
		if dateFilter != "" && !strings.HasPrefix(entry.Timestamp, dateFilter) {
			continue
		}
		if search != "" && !matchesSearch(entry, name, search) {
			continue
		}

		out = append(out, MonitorEntry{
			User:      name,
			IP:        entry.IP,
			CommandID: entry.CommandID,
			Timestamp: entry.Timestamp,
			Command:   entry.Command,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func matchesSearch(entry models.CommandEntry, name, search string) bool {
	return strings.Contains(strings.ToLower(entry.Command), search) ||
		strings.Contains(strings.ToLower(name), search) ||
		strings.Contains(entry.IP, search) ||
		strings.Contains(entry.CommandID, search) ||
		strings.Contains(entry.Timestamp, search)
}

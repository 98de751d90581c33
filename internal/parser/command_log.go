// Package parser turns the agent's raw command log into structured entries.
package parser

import (
	"bufio"
	"regexp"
	"sort"
	"strings"

	"github.com/lab-portal/backend/internal/models"
)

// commandLineRegex matches one command-log line:
// "<ip> - <id> <yyyy-MM-dd HH:mm:ss> <command>".
var commandLineRegex = regexp.MustCompile(`([\d.]+) -\s+(\d+)\s+([\d-]+ [\d:]+)\s+(.*)`)

// ParseCommandLine parses a single log line. ok is false for lines that
// do not match the expected shape; such lines carry no error because the
// log is free-form and partial garbage is expected.
func ParseCommandLine(line string) (models.CommandEntry, bool) {
	m := commandLineRegex.FindStringSubmatch(line)
	if m == nil {
		return models.CommandEntry{}, false
	}

	entry := models.CommandEntry{
		IP:        m[1],
		CommandID: m[2],
		Timestamp: m[3],
		Command:   m[4],
	}
	if ts, err := ParseLogTime(m[3]); err == nil {
		entry.Time = ts
	}
	return entry, true
}

// ParseCommandLog parses a whole log blob in file order, silently
// skipping unparseable lines, then sorts the result most-recent-first.
// Entries whose timestamp token does not parse sort last, keeping their
// relative file order.
func ParseCommandLog(text string) []models.CommandEntry {
	entries := make([]models.CommandEntry, 0, 128)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if entry, ok := ParseCommandLine(line); ok {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Time, entries[j].Time
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.After(b)
		}
	})

	return entries
}

// Cap returns at most n of the given entries, preserving order.
func Cap(entries []models.CommandEntry, n int) []models.CommandEntry {
	if n >= 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}

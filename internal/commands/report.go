// Package commands implements the statctl CLI subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/stats"
)

// NewReportCommand creates the 'report' subcommand for offline usage reports.
// Usage: statctl report --sessions connection_sessions.json --access access_codes.json [--window week]
func NewReportCommand() *cobra.Command {
	var sessionsFile string
	var accessFile string
	var window string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a usage report from exported session and access-code files",
		Long: `Aggregate an exported session log against an access-code table and print
per-user usage totals, without a running portal.

The inputs are the same two JSON documents the agent serves:
  connection_sessions.json - raw connection intervals
  access_codes.json        - access code to user mapping

Example:
  statctl report --sessions connection_sessions.json --access access_codes.json --window week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout(), sessionsFile, accessFile, window, time.Now())
		},
	}

	cmd.Flags().StringVarP(&sessionsFile, "sessions", "s", "connection_sessions.json", "path to the exported session log")
	cmd.Flags().StringVarP(&accessFile, "access", "a", "access_codes.json", "path to the exported access-code table")
	cmd.Flags().StringVarP(&window, "window", "w", "all", "time window: day, week, month or all")

	return cmd
}

func runReport(out io.Writer, sessionsFile, accessFile, window string, now time.Time) error {
	var sessions []models.SessionEntry
	if err := readJSONFile(sessionsFile, &sessions); err != nil {
		return fmt.Errorf("reading session log: %w", err)
	}
	var access models.AccessTable
	if err := readJSONFile(accessFile, &access); err != nil {
		return fmt.Errorf("reading access table: %w", err)
	}

	w := stats.ParseWindow(window)
	report := stats.Aggregate(sessions, access, now)

	// The window narrows the headline session count only; totals and
	// weekday buckets always cover the full log.
	rows := stats.FilterRows(report.Rows, w, now)

	fmt.Fprintf(out, "Usage report (%s window, %d sessions)\n\n", w, len(rows))
	fmt.Fprintf(out, "%-24s %10s %12s\n", "USER", "SESSIONS", "TIME")
	fmt.Fprintf(out, "%s\n", strings.Repeat("-", 48))
	for _, name := range report.Users() {
		st := report.PerUser[name]
		whole := int(st.TotalMinutes)
		fmt.Fprintf(out, "%-24s %10d %8dh %02dm\n", name, st.Sessions, whole/60, whole%60)
	}

	fmt.Fprintf(out, "\nSessions by day:\n")
	for _, day := range models.Weekdays {
		fmt.Fprintf(out, "  %-12s %d\n", day, report.UsageByDay[day])
	}
	return nil
}

func readJSONFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/lab-portal/backend/internal/parser"
)

// NewHistoryCommand creates the 'history' subcommand for inspecting a
// raw command log file.
// Usage: statctl history server_commands.log [--grep git] [--limit 50]
func NewHistoryCommand() *cobra.Command {
	var grep string
	var limit int

	cmd := &cobra.Command{
		Use:   "history <logfile>",
		Short: "Print parsed command history from a raw log file, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.OutOrStdout(), args[0], grep, limit)
		},
	}

	cmd.Flags().StringVarP(&grep, "grep", "g", "", "only show commands containing this substring")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of entries to print")

	return cmd
}

func runHistory(out io.Writer, path, grep string, limit int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading log file: %w", err)
	}

	entries := parser.ParseCommandLog(string(data))
	grep = strings.ToLower(grep)

	printed := 0
	for _, entry := range entries {
		if grep != "" && !strings.Contains(strings.ToLower(entry.Command), grep) {
			continue
		}
		fmt.Fprintf(out, "%-20s %-16s %s\n", entry.Timestamp, entry.IP, entry.Command)
		printed++
		if limit > 0 && printed == limit {
			break
		}
	}

	fmt.Fprintf(out, "\n(%d entries)\n", printed)
	return nil
}

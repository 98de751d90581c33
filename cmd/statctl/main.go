// Package main provides the statctl CLI for offline inspection of the
// lab server's exported logs:
// 1. report  - aggregate a session log export into per-user usage totals
// 2. history - print parsed command history from a raw log file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/lab-portal/backend/internal/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "statctl",
		Short: "Offline inspection of lab server usage exports",
		Long: `statctl works on the JSON and log files the lab server agent exports,
producing the same per-user usage numbers as the portal dashboard
without needing the portal to be running.`,
	}

	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elinasafina23/EBR/cmd/ebr/commands"
	"github.com/elinasafina23/EBR/logger"
)

var jsonLogs bool
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ebr",
	Short: "EBR - Electronic batch record service",
	Long: `EBR - Electronic batch record tracking with QMIB synchronization.

EBR tracks manufacturing batch execution records locally and keeps them
consistent with the AspenTech system:inmation QMIB gateway, which owns
equipment state, batch templates, and event acknowledgement.

Available commands:
  serve  - Start the EBR HTTP API
  db     - Manage EBR database operations
  config - Inspect effective configuration

Examples:
  ebr serve                # Start the API server
  ebr db migrate           # Apply pending schema migrations
  ebr db stats             # Show batch record statistics
  ebr config show          # Show effective configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose {
			if err := logger.SetVerbose(); err != nil {
				return fmt.Errorf("failed to enable verbose logging: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON structured logs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elinasafina23/EBR/config"
	"github.com/elinasafina23/EBR/errors"
)

// ConfigCmd inspects effective configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration (credentials redacted)",
	RunE:  runConfigShow,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	if path := config.GetViper().ConfigFileUsed(); path != "" {
		fmt.Printf("config file: %s\n", path)
	} else {
		fmt.Println("config file: (none; defaults + environment)")
	}
	fmt.Printf("environment: %s\n", cfg.Environment)
	fmt.Printf("qmib.base_url: %s\n", cfg.QMIB.BaseURL)
	fmt.Printf("qmib.username: %s\n", cfg.QMIB.Username)
	fmt.Printf("qmib.password: %s\n", redact(cfg.QMIB.Password))
	fmt.Printf("qmib.verify_ssl: %t\n", cfg.QMIB.VerifySSL)
	fmt.Printf("qmib.timeout_seconds: %g\n", cfg.QMIB.TimeoutSeconds)
	fmt.Printf("qmib.max_attempts: %d\n", cfg.QMIB.MaxAttempts)
	fmt.Printf("qmib.backoff_base_seconds: %g\n", cfg.QMIB.BackoffBaseSeconds)
	fmt.Printf("qmib.backoff_max_seconds: %g\n", cfg.QMIB.BackoffMaxSeconds)
	fmt.Printf("qmib.requests_per_minute: %d\n", cfg.QMIB.RequestsPerMinute)
	fmt.Printf("database.path: %s\n", cfg.Database.Path)
	fmt.Printf("server.port: %d\n", cfg.Server.Port)
	fmt.Printf("server.allowed_origins: %v\n", cfg.Server.AllowedOrigins)
	fmt.Printf("batch.strict_transitions: %t\n", cfg.Batch.StrictTransitions)
	return nil
}

func redact(s string) string {
	if s == "" {
		return "(unset)"
	}
	return "********"
}

package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elinasafina23/EBR/config"
	"github.com/elinasafina23/EBR/db"
	"github.com/elinasafina23/EBR/errors"
	"github.com/elinasafina23/EBR/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage EBR database",
	Long: `db — Manage EBR database operations

Examples:
  ebr db migrate    # Apply pending schema migrations
  ebr db stats      # Show batch record statistics`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show batch record statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func openDatabase() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return db.Open(cfg.Database.Path, logger.Logger)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	return db.Migrate(database, logger.Logger)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	var total int
	if err := database.QueryRow(`SELECT COUNT(*) FROM batch_records`).Scan(&total); err != nil {
		if err == sql.ErrNoRows {
			total = 0
		} else {
			return errors.Wrap(err, "failed to query batch record count")
		}
	}

	fmt.Printf("Batch records: %d\n", total)

	rows, err := database.Query(`SELECT status, COUNT(*) FROM batch_records GROUP BY status ORDER BY status`)
	if err != nil {
		return errors.Wrap(err, "failed to query status breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return errors.Wrap(err, "failed to scan status row")
		}
		fmt.Printf("  %-12s %d\n", status, count)
	}
	return rows.Err()
}

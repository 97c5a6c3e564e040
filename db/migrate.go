package db

import (
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/elinasafina23/EBR/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// bootstrapVersion creates the schema_migrations ledger itself, so it is the
// only migration allowed to run while the ledger table is absent.
const bootstrapVersion = "000"

// Migrate applies all pending schema migrations in filename order.
// If logger is provided, logs migration progress; otherwise operates silently.
func Migrate(conn *sql.DB, logger *zap.SugaredLogger) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		done, err := applied(conn, version)
		if err != nil {
			if version != bootstrapVersion {
				return errors.Newf("schema_migrations table missing, but migration is not %s: %s", bootstrapVersion, filename)
			}
		} else if done {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)",
					"migration", filename,
					"version", version,
				)
			}
			continue
		}

		if err := apply(conn, filename, version); err != nil {
			return err
		}

		if logger != nil {
			logger.Infow("Applied migration",
				"migration", filename,
				"version", version,
			)
		}
	}

	if logger != nil {
		logger.Infow("Migrations complete", "total_migrations", len(files))
	}

	return nil
}

// migrationFiles lists the embedded .sql migrations sorted by version prefix
func migrationFiles() ([]string, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applied reports whether a version is recorded in schema_migrations.
// Errors until the bootstrap migration has created the table.
func applied(conn *sql.DB, version string) (bool, error) {
	var exists bool
	err := conn.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version,
	).Scan(&exists)
	return exists, err
}

// apply runs one migration and records it, both inside a single transaction
// (the bootstrap migration creates the ledger table, then records itself).
func apply(conn *sql.DB, filename, version string) error {
	script, err := migrations.ReadFile(filepath.Join(migrationsDir, filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}

	tx, err := conn.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", filename)
	}

	if _, err := tx.Exec(string(script)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", filename)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", filename)
	}

	return errors.Wrapf(tx.Commit(), "commit %s", filename)
}

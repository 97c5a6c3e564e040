package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/elinasafina23/EBR/batch"
	"github.com/elinasafina23/EBR/config"
	"github.com/elinasafina23/EBR/db"
	"github.com/elinasafina23/EBR/errors"
	"github.com/elinasafina23/EBR/integration"
	"github.com/elinasafina23/EBR/logger"
	"github.com/elinasafina23/EBR/qmib"
	"github.com/elinasafina23/EBR/server"
	"github.com/elinasafina23/EBR/storage"
)

// ServeCmd starts the EBR HTTP API
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EBR HTTP API",
	Long: `Start the EBR HTTP API server.

Serves batch record CRUD, lifecycle transitions with QMIB publication,
template synchronization, and event acknowledgement relay.`,
	RunE: runServe,
}

var watchConfig bool

func init() {
	ServeCmd.Flags().BoolVar(&watchConfig, "watch-config", false, "Reload configuration when ebr.toml changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	log := logger.Logger

	database, err := db.OpenWithMigrations(cfg.Database.Path, log)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	client := qmib.NewClient(cfg.QMIB, logger.ComponentLogger("qmib"))
	defer client.Close()

	machine := batch.NewMachine()
	if cfg.Batch.StrictTransitions {
		machine = batch.NewStrictMachine()
	}

	store := storage.NewBatchStore(database)
	service := integration.NewService(store, client, machine, logger.ComponentLogger("integration"))
	srv := server.New(database, cfg, store, service, logger.ComponentLogger("server"))

	if watchConfig {
		if path := os.Getenv("EBR_CONFIG"); path != "" {
			watcher, err := config.NewWatcher(path)
			if err != nil {
				log.Warnw("Config watcher unavailable", logger.FieldError, err)
			} else {
				watcher.OnReload(func(newCfg *config.Config) error {
					log.Infow("Configuration reloaded; restart to apply connection changes")
					return nil
				})
				watcher.Start()
				defer watcher.Stop()
			}
		} else {
			log.Warnw("--watch-config requires EBR_CONFIG to point at the config file")
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan error, 1)
	go func() {
		done <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case <-sig:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

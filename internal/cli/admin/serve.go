// Package admin implements the dokragd daemon commands.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/database"
	"github.com/cloo-solutions/dokrag/internal/jobs"
	"github.com/cloo-solutions/dokrag/internal/repository"
	"github.com/cloo-solutions/dokrag/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the embedding backfill worker and the ops listener",
		Long: `Runs the worker that embeds chunks of documents stored without a complete
set of vectors, and an HTTP listener exposing /healthz and /metrics.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().Bool("migrate", false, "Apply database migrations before starting")
	cmd.Flags().String("migrations-dir", database.DefaultMigrationsDir, "Directory holding the SQL migrations")
	cmd.Flags().String("ops-addr", "", "Ops listener address (default from DOKRAG_OPS_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.LoadApp("daemon")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer app.Close()
	log := app.Log

	if migrateFirst, _ := cmd.Flags().GetBool("migrate"); migrateFirst {
		dir, _ := cmd.Flags().GetString("migrations-dir")
		if err := applyMigrations(app, dir, database.Up); err != nil {
			return err
		}
	}

	pool, err := app.Pool(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	var worker *jobs.Worker
	embeddingSvc, err := app.EmbeddingService(ctx)
	switch {
	case errors.Is(err, cli.ErrEmbeddingsNotConfigured):
		log.Warn().Err(err).Msg("backfill worker disabled")
	case err != nil:
		return err
	default:
		processor := jobs.NewEmbeddingWorker(repository.NewEmbeddingJobRepository(pool), embeddingSvc, app.Metrics, log)
		worker = jobs.NewWorker(processor, app.Config.WorkerPollInterval, log)
		go worker.Start(ctx)
	}

	addr, _ := cmd.Flags().GetString("ops-addr")
	if addr == "" {
		addr = app.Config.OpsAddr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: server.NewRouter(server.RouterConfig{
			DB:       pool,
			Gatherer: app.Registry,
			Logger:   log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("ops listener started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		if err != nil {
			stop()
			if worker != nil {
				worker.Stop()
			}
			return fmt.Errorf("ops listener failed: %w", err)
		}
	}

	if worker != nil {
		worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops listener forced to shutdown: %w", err)
	}

	log.Info().Msg("daemon exited")
	return nil
}

func applyMigrations(app *cli.App, dir string, direction database.Direction) error {
	status, err := database.Migrate(app.Config.DatabaseURL, dir, direction)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	event := app.Log.Info().Str("direction", string(direction)).Uint("version", status.Version)
	if status.Changed {
		event.Msg("migrations applied")
	} else {
		event.Msg("database schema is up to date")
	}
	return nil
}

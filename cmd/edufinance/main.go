package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/edufinance/internal/config"
	"github.com/deppfellow/edufinance/internal/database"
	"github.com/deppfellow/edufinance/internal/handler"
	"github.com/deppfellow/edufinance/internal/logger"
	"github.com/deppfellow/edufinance/internal/repository"
	"github.com/deppfellow/edufinance/internal/router"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	migrationTimeout = 2 * time.Minute
	shutdownTimeout  = 30 * time.Second
)

func main() {
	root := &cobra.Command{
		Use:           "edufinance",
		Short:         "Multi-tenant school accounting API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), migrateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log := logger.NewLogger(cfg.Observability)

			ctx, cancel := context.WithTimeout(cmd.Context(), migrationTimeout)
			defer cancel()

			return database.Migrate(ctx, &log, cfg)
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			loggerService := logger.NewLoggerService(cfg.Observability)
			defer loggerService.Shutdown()

			log := logger.NewLoggerWithService(cfg.Observability, loggerService)
			return serve(cmd.Context(), cfg, &log, loggerService)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) error {
	if !cfg.IsLocal() {
		migrateCtx, cancel := context.WithTimeout(ctx, migrationTimeout)
		err := database.Migrate(migrateCtx, log, cfg)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(srv, repos)

	if err := services.Auth.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap super admin: %w", err)
	}

	srv.Job.InitHandlers(cfg, log)
	srv.Job.SetReconciler(services.Ledger)
	if err := srv.Job.Start(); err != nil {
		return fmt.Errorf("failed to start job workers: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers, services))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

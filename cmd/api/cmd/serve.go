package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-go/internal/crypto"
	"github.com/eventhub/eventhub-go/internal/handler"
	"github.com/eventhub/eventhub-go/internal/repository"
	"github.com/eventhub/eventhub-go/internal/server"
	"github.com/eventhub/eventhub-go/internal/service"
)

var (
	serverPort  string
	autoMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and serve the EventHub API until SIGINT or SIGTERM.

Examples:
  # Start with configuration from the environment
  eventhub serve

  # Apply pending migrations first, log in console format
  eventhub serve --migrate --log-format console`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverPort, "port", "", "listen port (default: PORT or 8080)")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServer(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serverPort != "" {
		cfg.Port = serverPort
	}

	if autoMigrate {
		if err := migrateUp(ctx, cfg.DBDriver, cfg.DatabaseDSN); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	db, err := repository.NewDB(ctx, cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tokens := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens)
	eventService := service.NewEventService(repository.NewEventRepository(db))

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Logger:    logger,
			DB:        db,
			Tokens:    tokens,
			RateLimit: cfg.RateLimit,
			Auth:      handler.NewAuthHandler(authService),
			Events:    handler.NewEventHandler(eventService),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("driver", db.Dialect.String()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-go/internal/config"
)

var (
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "eventhub",
		Short: "EventHub API server",
		Long: `EventHub is an event management backend: users register, log in with a
bearer token, publish events and join or leave events published by others.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute runs the root command. It is called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: LOG_FORMAT or json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads .env (if present) and the environment, then applies
// command-line overrides and builds the logger.
func loadConfig() (config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger := config.NewLogger(cfg.Logging)
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using environment variables")
	}
	return cfg, logger, nil
}

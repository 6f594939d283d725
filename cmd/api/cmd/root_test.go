package cmd

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])

	down, _, err := rootCmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "1", down.Flags().Lookup("steps").DefValue)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("ENV", "development")

	logLevel, logFormat = "debug", "console"
	t.Cleanup(func() { logLevel, logFormat = "", "" })

	cfg, logger, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

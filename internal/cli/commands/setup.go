package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datagrid/internal/cli/config"
	"github.com/leapstack-labs/datagrid/internal/dataservice"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Client *dataservice.Client
}

// NewCommandContext creates a CommandContext with a backend client.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	client := dataservice.New(dataservice.Options{
		BaseURL:  cfg.BackendURL,
		APIToken: cfg.APIToken,
		Logger:   logger,
	})

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Client: client,
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	backendURL := getEnvOrDefault("DATAGRID_BACKEND_URL", config.DefaultBackendURL)
	apiToken := os.Getenv("DATAGRID_API_TOKEN")
	verbose := os.Getenv("DATAGRID_VERBOSE") == "true"
	outputFormat := getEnvOrDefault("DATAGRID_OUTPUT", config.DefaultOutput)

	fetchTimeout := config.DefaultFetchTimeout
	if v := os.Getenv("DATAGRID_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			fetchTimeout = d
		}
	}

	return &config.Config{
		BackendURL:   backendURL,
		APIToken:     apiToken,
		PageSize:     config.DefaultPageSize,
		FetchTimeout: fetchTimeout,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

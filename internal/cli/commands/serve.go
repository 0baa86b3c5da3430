package commands

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datagrid/internal/cli/config"
	"github.com/leapstack-labs/datagrid/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the DataGrid dashboard",
		Long: `Start a local web server providing the trading dashboard.

The dashboard provides:
- Dataset explorer with server-side paging, sorting, search and filters
- Strategy and agent management
- A terminal panel for backend commands
- Backend settings`,
		Example: `  # Start the dashboard on the default port
  datagrid serve

  # Start on a custom port against a remote backend
  datagrid serve --port 3000 --backend https://trade.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable dev mode (hot reload endpoints)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	uiCfg := cmdCtx.Cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	dev := uiCfg.Dev
	if cmd.Flags().Changed("dev") {
		dev = opts.Dev
	}

	serverCfg := ui.Config{
		Client:        cmdCtx.Client,
		Port:          port,
		SessionSecret: sessionSecret(uiCfg),
		ConfigPath:    config.GetConfigFileUsed(),
		PageSize:      cmdCtx.Cfg.PageSize,
		FetchTimeout:  cmdCtx.Cfg.FetchTimeout,
		Logger:        cmdCtx.Logger,
		Dev:           dev,
	}

	server := ui.NewServer(serverCfg)

	if !opts.NoBrowser {
		go openBrowser(fmt.Sprintf("http://localhost:%d", port))
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting dashboard on http://localhost:%d\n", port)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// sessionSecret resolves the cookie signing secret. The environment wins so
// the secret can stay out of the config file.
func sessionSecret(uiCfg *config.UIConfig) string {
	if secret := os.Getenv("DATAGRID_SESSION_SECRET"); secret != "" {
		return secret
	}
	return uiCfg.SessionSecret
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datagrid/internal/backend"
)

// DemoOptions holds options for the demo command.
type DemoOptions struct {
	Port     int
	Database string
}

// NewDemoCommand creates the demo command.
func NewDemoCommand() *cobra.Command {
	opts := &DemoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Start the embedded demo backend",
		Long: `Start a local demo backend with seeded trading data.

The demo backend implements the same HTTP contract as a real trading
backend, so 'datagrid serve' and 'datagrid query' can be pointed at it
for evaluation and development.`,
		Example: `  # Terminal 1: demo backend
  datagrid demo

  # Terminal 2: dashboard against it
  datagrid serve --backend http://localhost:9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 9090)")
	cmd.Flags().StringVar(&opts.Database, "database", "", "SQLite database path (default: in-memory)")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *DemoOptions) error {
	cmdCtx := NewCommandContext(cmd)
	demoCfg := cmdCtx.Cfg.GetDemoConfig()

	port := demoCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	database := demoCfg.Database
	if opts.Database != "" {
		database = opts.Database
	}

	store, err := backend.OpenStore(database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	srv := backend.NewServer(store, cmdCtx.Logger)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Demo backend listening on http://localhost:%d\n", port)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, port)
}

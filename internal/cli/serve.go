package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/api"
	"github.com/ppiankov/factlens/internal/stats"
)

var (
	serveAddr    string
	serveReports bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes analysis, history, bookmarks, alerts, statistics and
reports over HTTP. Triggered alerts are pushed to websocket subscribers at
/ws/alerts?user_id=<id>.

Callers identify the user with the X-User-ID header; authentication is
expected to happen in front of factlens.

Example:
  factlens serve
  factlens serve --addr :9090 --reports
  FACTLENS_STORE_DRIVER=postgres DATABASE_URL=postgres://... factlens serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr from config)")
	serveCmd.Flags().BoolVar(&serveReports, "reports", false, "generate scheduled daily reports (default: reports.enabled from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	addr := serveAddr
	if addr == "" {
		addr = a.config.Server.Addr
	}

	if serveReports || a.config.Reports.Enabled {
		scheduler := stats.NewScheduler(a.store, a.logger)
		if err := scheduler.Start(a.config.Reports.Schedule); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	fmt.Fprintf(os.Stderr, "✓ Store: %s\n", a.config.Store.Driver)
	fmt.Fprintf(os.Stderr, "✓ Adapters: %s\n", strings.Join(enabledOrNone(a.collector.Enabled()), ", "))
	fmt.Fprintf(os.Stderr, "✓ Listening on %s\n", addr)

	server := api.NewServer(a.analyzer, a.store, a.table, a.hub, a.logger)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

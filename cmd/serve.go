package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mselser95/venuehub/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API on HTTP_PORT, serving:
  /api/v1/exchanges/...  market data, top rates, trading and portfolio
  /health, /ready        liveness and readiness
  /metrics               Prometheus metrics`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Duration("purge-interval", 0, "How often expired in-process cache entries are swept (default 1m)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	purgeInterval, _ := cmd.Flags().GetDuration("purge-interval")

	application, err := app.New(cfg, logger, &app.Options{PurgeInterval: purgeInterval})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routegen/internal/dev"
	"github.com/vango-dev/routegen/internal/metrics"
)

func (a *app) devCmd() *cobra.Command {
	var noReload bool

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Regenerate routes on every change",
		Long: `Watch the pages folder and regenerate the route table on every change.

Connected browsers reload when the table changes and show an overlay when
generation fails. Add the client script to your index.html during
development:

  <script src="http://localhost:3100/_routegen/client.js"></script>

Prometheus metrics are served at /metrics and the last pass at
/_routegen/status.

Examples:
  routegen dev
  routegen dev --port 4000
  routegen dev --host 0.0.0.0 --no-reload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noReload {
				a.cfg.Dev.Reload = false
			}
			return a.runDev(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default from routegen.yaml)")
	cmd.Flags().String("host", "", "Host to bind to (default from routegen.yaml)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Do not serve the browser reload channel")

	return cmd
}

func (a *app) runDev(ctx context.Context) error {
	a.printBanner()
	fmt.Fprintln(a.out, "  dev")
	fmt.Fprintln(a.out)

	server := dev.NewServer(dev.ServerOptions{
		Config:  a.cfg,
		FS:      a.fs,
		Metrics: metrics.New(),
		Logger:  a.logger,
	})

	a.info("Watching %s", a.cfg.PagesPath())
	a.info("Writing %s", a.cfg.OutputPath())
	if a.cfg.Dev.Reload {
		a.info("Client script %s/_routegen/client.js", a.cfg.DevURL())
	}
	fmt.Fprintln(a.out)

	if err := server.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\n  Shutting down...")
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/assetpath/internal/server"
	"github.com/vango-dev/assetpath/pkg/assets"
	"github.com/vango-dev/assetpath/pkg/middleware"
)

func serveCmd(global *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolutions and assets over HTTP",
		Long: `Start the asset server.

Routes:
  /resolve     resolve a source given as query parameters
  /ws          resolve over a WebSocket, one JSON request per message
  /metrics     Prometheus metrics
  <prefix>/*   managed asset bodies from the catalog
  /*           files from the public directory

Examples:
  assetpath serve
  assetpath serve --addr=:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := middleware.NewMetrics(middleware.WithRegistry(reg))

			helper, cat, err := newHelper(cfg, assets.WithObserver(metrics))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info(cmd.OutOrStdout(), "Serving on http://%s", cfg.Server.Addr)
			srv := server.New(cfg, helper, cat, server.WithMetrics(metrics, reg))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

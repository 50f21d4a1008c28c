package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drblury/routeflow"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		port        int
		metricsPort int
		cors        []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP",
		Long: `Build the route table and serve it on /api/routes and /api/routes/{topic}.
Build metrics are exposed on /metrics when --metrics-port is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := opts.config()
			conf.WebUIEnabled = true
			conf.WebUIPort = port
			conf.WebUICORSAllowedOrigins = cors
			if metricsPort > 0 {
				conf.MetricsEnabled = true
				conf.MetricsPort = metricsPort
			}

			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := routeflow.NewService(conf, logger, ctx, routeflow.ServiceDependencies{})
			if err != nil {
				return err
			}
			return svc.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "Route inspector port")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "Prometheus metrics port (0 disables metrics)")
	cmd.Flags().StringSliceVar(&cors, "cors-origin", nil, "Allowed CORS origins")

	return cmd
}

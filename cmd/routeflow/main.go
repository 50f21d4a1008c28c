package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drblury/routeflow"
)

type rootOptions struct {
	manifest string
	strict   bool
	workers  int
	logLevel string
	tracing  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "routeflow",
		Short: "Resolve message queue route tables from processor manifests",
		Long: `routeflow builds the topic route table of a message-driven application
from a processor manifest. It validates every declaration, renders the table as
JSON or YAML, looks up single topics and can serve the table over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.manifest, "manifest", "m", "routes.yaml", "Processor manifest (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Fail when a processor resolves to zero routes")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Extract declarations on this many goroutines")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.tracing, "tracing", false, "Trace builds through the global OpenTelemetry provider")

	rootCmd.AddCommand(newBuildCommand(opts))
	rootCmd.AddCommand(newLookupCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

// config maps the global flags onto a Config using the manifest source.
func (o *rootOptions) config() *routeflow.Config {
	return &routeflow.Config{
		Source:            routeflow.SourceManifest,
		ManifestFile:      o.manifest,
		RequireRoutes:     o.strict,
		ExtractionWorkers: o.workers,
		TracingEnabled:    o.tracing,
	}
}

func (o *rootOptions) logger(w io.Writer) (routeflow.ServiceLogger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(o.logLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", o.logLevel)
	}
	return routeflow.NewSlogServiceLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))), nil
}

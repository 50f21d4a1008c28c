package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/drblury/routeflow"
)

func newBuildCommand(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and print the route table",
		Long: `Build the route table from the manifest and print it. Every topic maps
to its routes in dispatch order; each route is [processor, destination] with a
null destination when the transport default is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := opts.config()
			conf.OutputFormat = format
			conf.OutputFile = output
			if err := routeflow.ValidateConfig(conf); err != nil {
				return err
			}

			table, err := buildTable(cmd.Context(), opts, conf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), table, conf.OutputFormat, conf.OutputFile)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the table to this file instead of stdout")

	return cmd
}

func buildTable(ctx context.Context, opts *rootOptions, conf *routeflow.Config, logOut io.Writer) (*routeflow.Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := opts.logger(logOut)
	if err != nil {
		return nil, err
	}

	svc, err := routeflow.NewService(conf, logger, ctx, routeflow.ServiceDependencies{})
	if err != nil {
		return nil, err
	}
	return svc.Build(ctx)
}

func renderTable(table *routeflow.Table, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := routeflow.MarshalIndent(table, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(table)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func writeTable(stdout io.Writer, table *routeflow.Table, format, output string) error {
	data, err := renderTable(table, format)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write route table: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %d routes for %d topics to %s\n", table.Len(), len(table.Topics()), output)
	return nil
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLookupCommand(opts *rootOptions) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show the processors consuming a topic",
		Long: `Build the route table and list the routes of one topic in dispatch order.
Fails when no processor consumes the topic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := buildTable(cmd.Context(), opts, opts.config(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			routes := table.Routes(topic)
			if len(routes) == 0 {
				return fmt.Errorf("no routes for topic %q", topic)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tPROCESSOR\tDESTINATION")
			for i, r := range routes {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Processor, r.Destination)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic to look up (required)")
	if err := cmd.MarkFlagRequired("topic"); err != nil {
		panic(fmt.Sprintf("Failed to mark topic flag as required: %v", err))
	}

	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notehub/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printed := false
			err = logs.Tail(commandCtx(cmd), logs.Path(cfg), logs.TailOptions{Lines: lines, Follow: follow}, func(line string) error {
				printed = true
				_, err := fmt.Fprintln(out, line)
				return err
			})
			if err != nil {
				return fmt.Errorf("tail logs: %w", err)
			}
			if !printed && !follow {
				fmt.Fprintln(out, "No log entries available")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	return cmd
}

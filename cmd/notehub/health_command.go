package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notehub/internal/noteaccess"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check database connectivity and inbox/vault writability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withAccess(cmd, func(access noteaccess.Access) error {
				report, err := access.Health(commandCtx(cmd))
				if err != nil {
					return fmt.Errorf("health check: %w", err)
				}
				if jsonOutput {
					if err := printJSON(cmd, report); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					colorize := shouldColorize(out)
					fmt.Fprintln(out, renderSectionHeader("Health", colorize))
					for _, check := range report.Checks {
						kind := statusOK
						if !check.Passed {
							kind = statusError
						}
						fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
					}
					fmt.Fprintf(out, "Overall: %s\n", report.Status)
				}
				if !report.Healthy() {
					return errSilentExit
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

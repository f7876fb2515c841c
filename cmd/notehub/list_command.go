package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notehub/internal/noteaccess"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var offset int
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must not be negative")
			}
			return ctx.withAccess(cmd, func(access noteaccess.Access) error {
				resp, err := access.List(commandCtx(cmd), offset, limit)
				if err != nil {
					return fmt.Errorf("list notes: %w", err)
				}
				if jsonOutput {
					return printJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Notes) == 0 {
					fmt.Fprintln(out, "No notes found")
					return nil
				}
				fmt.Fprintln(out, renderTable(noteListColumns, buildNoteListRows(resp.Notes, shouldColorize(out))))
				if len(resp.Notes) == resp.Limit {
					fmt.Fprintf(out, "Showing %d notes from offset %d; use --offset %d for more\n",
						len(resp.Notes), resp.Offset, resp.Offset+resp.Limit)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Number of notes to skip")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum notes to return (default 50, max 500)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

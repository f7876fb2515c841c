package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"notehub/internal/config"
	"notehub/internal/export"
	"notehub/internal/fileutil"
	"notehub/internal/notes"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the note listing to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := strings.TrimSpace(output)
			if target == "" {
				target = fmt.Sprintf("notehub-%s.xlsx", time.Now().Format("20060102-150405"))
			}
			target, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			return ctx.withStore(cmd, func(_ *config.Config, store notes.Store) error {
				var buf bytes.Buffer
				count, err := export.WriteWorkbook(commandCtx(cmd), store, &buf)
				if err != nil {
					return fmt.Errorf("build workbook: %w", err)
				}
				if err := fileutil.WriteFileAtomic(commandCtx(cmd), target, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", count, target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination .xlsx path (default notehub-<timestamp>.xlsx)")
	return cmd
}

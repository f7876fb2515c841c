package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"notehub/internal/api"
	"notehub/internal/noteaccess"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note with its transcript and extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withAccess(cmd, func(access noteaccess.Access) error {
				note, err := access.Describe(commandCtx(cmd), id)
				if err != nil {
					return fmt.Errorf("show note: %w", err)
				}
				if note == nil {
					return fmt.Errorf("note %s not found", id)
				}
				if jsonOutput {
					return printJSON(cmd, note)
				}
				out := cmd.OutOrStdout()
				writeNoteDetail(out, note, shouldColorize(out))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func writeNoteDetail(out io.Writer, note *api.Note, colorize bool) {
	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintln(out, renderSectionHeader(title, colorize))
	fmt.Fprintf(out, "ID:       %s\n", note.ID)
	fmt.Fprintf(out, "Status:   %s\n", renderNoteStatus(note.Status, colorize))
	if note.TextInput {
		fmt.Fprintln(out, "Source:   text input")
	} else if note.SourceFilename != "" {
		fmt.Fprintf(out, "Source:   %s\n", note.SourceFilename)
	}
	fmt.Fprintf(out, "Created:  %s\n", formatDisplayTime(note.CreatedAt))
	fmt.Fprintf(out, "Updated:  %s\n", formatDisplayTime(note.UpdatedAt))
	fmt.Fprintf(out, "Tags:     %s\n", formatTags(note.Tags))
	if note.ArchivePath != "" {
		fmt.Fprintf(out, "Archive:  %s\n", note.ArchivePath)
	}

	if note.Error != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Error", colorize))
		fmt.Fprintln(out, renderStatusLine(statusTitle(note.Error.Stage), statusError, note.Error.Message, colorize))
		if note.Error.Kind != "" {
			fmt.Fprintf(out, "%sKind: %s\n", statusIndent, note.Error.Kind)
		}
		if note.Error.Hint != "" {
			fmt.Fprintf(out, "%sHint: %s\n", statusIndent, note.Error.Hint)
		}
	}

	if note.Summary != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Summary", colorize))
		fmt.Fprintln(out, note.Summary)
	}
	if len(note.ActionItems) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Action Items", colorize))
		for _, item := range note.ActionItems {
			fmt.Fprintf(out, "- [ ] %s\n", item)
		}
	}
	if note.Transcript != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Transcript", colorize))
		fmt.Fprintln(out, note.Transcript)
	}
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"notehub/internal/api"
	"notehub/internal/noteaccess"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, worker and note status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withAccess(cmd, func(access noteaccess.Access) error {
				status, err := access.Status(commandCtx(cmd))
				if err != nil {
					return fmt.Errorf("daemon status: %w", err)
				}
				if jsonOutput {
					return printJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				writeStatus(out, status, shouldColorize(out))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func writeStatus(out io.Writer, status api.DaemonStatus, colorize bool) {
	fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
	if status.Running {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Store", statusInfo, status.Store, colorize))
	fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
	if status.Workflow.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusError, status.Workflow.LastError, colorize))
	}
	if last := status.Workflow.LastNote; last != nil {
		fmt.Fprintln(out, renderStatusLine("Last note", statusInfo, fmt.Sprintf("%s (%s)", last.Title, last.Status), colorize))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("Notes", colorize))
	fmt.Fprintln(out, renderTable(
		[]tableColumn{{Header: "Status"}, {Header: "Count", Align: alignRight}},
		buildStatusRows(status.Workflow.NoteStats, colorize),
	))

	if len(status.Workflow.Workers) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Workers", colorize))
		rows := make([][]string, 0, len(status.Workflow.Workers))
		for _, w := range status.Workflow.Workers {
			rows = append(rows, []string{
				w.Name,
				w.State,
				w.NoteID,
				strconv.Itoa(w.Processed),
				strconv.Itoa(w.Failed),
			})
		}
		fmt.Fprintln(out, renderTable([]tableColumn{
			{Header: "Worker"},
			{Header: "State"},
			{Header: "Note"},
			{Header: "Processed", Align: alignRight},
			{Header: "Failed", Align: alignRight},
		}, rows))
	}

	if len(status.Workflow.StageHealth) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Stages", colorize))
		for _, h := range status.Workflow.StageHealth {
			kind := statusOK
			if !h.Ready {
				kind = statusError
			}
			fmt.Fprintln(out, renderStatusLine(statusTitle(h.Name), kind, h.Detail, colorize))
		}
	}

	if len(status.Dependencies) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
		for _, dep := range status.Dependencies {
			kind := statusOK
			detail := dep.Command
			switch {
			case dep.Available:
			case dep.Optional:
				kind = statusWarn
				detail = dep.Detail
			default:
				kind = statusError
				detail = dep.Detail
			}
			fmt.Fprintln(out, renderStatusLine(dep.Name, kind, detail, colorize))
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"notehub/internal/daemonctl"
)

func newDaemonControlCommands(ctx *commandContext) []*cobra.Command {
	var logLevel string
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the notehub daemon in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}

			stdout := cmd.OutOrStdout()
			result, err := daemonctl.EnsureStarted(commandCtx(cmd), daemonctl.StartOptions{
				Launch: daemonctl.LaunchOptions{
					Executable: exe,
					ConfigPath: flagValue(ctx.configFlag),
					APIBind:    flagValue(ctx.apiFlag),
					LogLevel:   logLevel,
				},
				PIDPath: cfg.PIDPath(),
				APIBind: ctx.apiBind(cfg),
				Token:   ctx.token(),
				Timeout: 15 * time.Second,
			})
			if err != nil {
				return err
			}
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(stdout, "Daemon already running (pid %d)\n", result.PID)
			default:
				fmt.Fprintf(stdout, "Daemon started (pid %d)\n", result.PID)
			}
			return nil
		},
	}
	startCmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for the launched daemon")

	var grace time.Duration
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background notehub daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.Stop(commandCtx(cmd), cfg.PIDPath(), grace)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(stdout, "Daemon did not exit within %s; killed pid %d\n", grace, result.PID)
				return nil
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", result.PID)
			return nil
		},
	}
	stopCmd.Flags().DurationVar(&grace, "timeout", 10*time.Second, "How long to wait for a clean shutdown before killing")

	return []*cobra.Command{startCmd, stopCmd}
}

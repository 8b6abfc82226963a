package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcporter/mcporter/internal/daemon"
)

func daemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the keep-alive daemon",
	}
	cmd.AddCommand(daemonStartCommand())
	cmd.AddCommand(daemonStatusCommand())
	cmd.AddCommand(daemonStopCommand())
	cmd.AddCommand(daemonRestartCommand())
	cmd.AddCommand(daemonRunCommand())
	return cmd
}

func newDaemonClient(rt *runtime) (*daemon.Client, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return daemon.NewClient(rt.actx, rt.configPath, exe), nil
}

func daemonStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Spawn the daemon for the current config if it isn't already running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(rt)
			if err != nil {
				return err
			}
			if err := client.EnsureDaemon(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("daemon running")
			return nil
		},
	}
}

func daemonStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report the daemon's status without spawning it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(rt)
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(status)
			}
			fmt.Printf("pid=%d uptime=%dms servers=%d\n", status.PID, status.UptimeMs, len(status.Servers))
			for _, s := range status.Servers {
				fmt.Printf("  %s\t%s\n", s.Name, s.State)
			}
			return nil
		},
	}
}

func daemonStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(rt)
			if err != nil {
				return err
			}
			if _, err := client.Call(cmd.Context(), "stop", struct{}{}); err != nil {
				return err
			}
			fmt.Println("daemon stopped")
			return nil
		},
	}
}

func daemonRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop the running daemon, then spawn a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			client, err := newDaemonClient(rt)
			if err != nil {
				return err
			}
			_, _ = client.Call(cmd.Context(), "stop", struct{}{}) // best-effort; daemon may not be running
			if err := client.EnsureDaemon(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("daemon restarted")
			return nil
		},
	}
}

// daemonRunCommand is the hidden entry point daemon.Client.spawn execs
// (`mcporter daemon run --config <path>`): it blocks, serving the socket,
// until stopped.
func daemonRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "run",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runDaemonForeground(cmd.Context(), rt)
		},
	}
}

func runDaemonForeground(ctx context.Context, rt *runtime) error {
	addr := daemon.ResolveAddr(rt.actx, rt.configPath)
	ln, err := daemon.Listen(addr)
	if err != nil {
		return err
	}

	server := daemon.NewServer(rt.actx, rt.pool, 0)
	if err := daemon.WriteMeta(addr, os.Getpid()); err != nil {
		rt.actx.Logger.Warnf("mcporter: writing daemon metadata: %v", err)
	}
	defer os.Remove(addr.MetaPath)

	return server.Serve(ctx, ln)
}

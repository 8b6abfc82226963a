package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcporter/mcporter/internal/oauthvault"
	"github.com/mcporter/mcporter/internal/pool"
)

func authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect and drive a server's OAuth credentials",
	}
	cmd.AddCommand(authStatusCommand())
	cmd.AddCommand(authLoginCommand())
	cmd.AddCommand(authLogoutCommand())
	return cmd
}

func authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <server>",
		Short: "Report whether a server has stored OAuth tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return authStatus(rt, args[0])
		},
	}
}

func authStatus(rt *runtime, server string) error {
	def, ok := rt.pool.Definition(server)
	if !ok {
		return &pool.UnknownServerError{Name: server}
	}
	vault := oauthvault.New(rt.actx, rt.homeDir)
	tok, err := vault.ReadTokens(&def)
	if err != nil {
		return err
	}
	authorized := tok != nil && tok.Valid()
	if flags.jsonOutput {
		return printJSON(map[string]any{"server": server, "authorized": authorized})
	}
	if authorized {
		fmt.Printf("%s: authorized\n", server)
	} else {
		fmt.Printf("%s: not authorized (run `mcporter auth login %s`)\n", server, server)
	}
	return nil
}

func authLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <server>",
		Short: "Run the interactive OAuth flow for a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return authLogin(cmd, rt, args[0])
		},
	}
}

// authLogin forces a fresh, uncached connection: when the server requires
// OAuth (explicitly or via 401 auto-promotion), the pool's connection
// state machine runs the full interactive flow before this call returns.
func authLogin(cmd *cobra.Command, rt *runtime, server string) error {
	_, err := withTimeout(cmd.Context(), "auth login "+server, rt.callTimeout(), func(ctx context.Context) (*pool.ClientContext, error) {
		return rt.pool.Connect(ctx, server, pool.ConnectOptions{SkipCache: true})
	})
	if err != nil {
		return printOrReturnError(server, err)
	}
	fmt.Printf("%s: authorized\n", server)
	return nil
}

func authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <server>",
		Short: "Clear a server's stored OAuth credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return authLogout(rt, args[0])
		},
	}
}

func authLogout(rt *runtime, server string) error {
	def, ok := rt.pool.Definition(server)
	if !ok {
		return &pool.UnknownServerError{Name: server}
	}
	vault := oauthvault.New(rt.actx, rt.homeDir)
	if err := vault.Clear(&def, oauthvault.ScopeAll); err != nil {
		return err
	}
	_ = rt.pool.Close(server)
	fmt.Printf("%s: credentials cleared\n", server)
	return nil
}

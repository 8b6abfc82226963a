package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcporter/mcporter/internal/pool"
)

func listCommand() *cobra.Command {
	var opts struct {
		Schema   bool
		NoAuth   bool
		AllTools bool
	}
	cmd := &cobra.Command{
		Use:   "list [server]",
		Short: "List configured servers, or a server's tools",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			switch {
			case len(args) == 1:
				return listTools(cmd, rt, args[0], opts.Schema, !opts.NoAuth)
			case opts.AllTools:
				return listAllTools(cmd, rt, opts.Schema, !opts.NoAuth)
			default:
				return listServers(rt)
			}
		},
	}
	cmd.Flags().BoolVar(&opts.Schema, "schema", false, "Include each tool's input/output schema")
	cmd.Flags().BoolVar(&opts.NoAuth, "no-auth", false, "Never trigger interactive OAuth while listing")
	cmd.Flags().BoolVar(&opts.AllTools, "all-tools", false, "List every server's tools, fanned out concurrently")
	return cmd
}

func listServers(rt *runtime) error {
	names := rt.pool.Names()
	if flags.jsonOutput {
		return printJSON(names)
	}
	for _, name := range names {
		def, _ := rt.pool.Definition(name)
		if def.Description != "" {
			fmt.Printf("%s\t%s\n", name, def.Description)
		} else {
			fmt.Println(name)
		}
	}
	return nil
}

func listTools(cmd *cobra.Command, rt *runtime, server string, includeSchema, autoAuthorize bool) error {
	tools, err := withTimeout(cmd.Context(), "list "+server, rt.listTimeout(), func(ctx context.Context) ([]pool.ToolInfo, error) {
		return rt.pool.ListTools(ctx, server, pool.ListToolsOptions{IncludeSchema: includeSchema, AutoAuthorize: autoAuthorize})
	})
	if err != nil {
		return printOrReturnError(server, err)
	}
	if flags.jsonOutput {
		return printJSON(tools)
	}
	for _, t := range tools {
		if t.Description != "" {
			fmt.Printf("%s.%s\t%s\n", server, t.Name, t.Description)
		} else {
			fmt.Printf("%s.%s\n", server, t.Name)
		}
	}
	return nil
}

// serverTools is one server's ListTools outcome, aggregated by
// listAllTools.
type serverTools struct {
	Server string          `json:"server"`
	Tools  []pool.ToolInfo `json:"tools,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// listAllTools fans ListTools out across every registered server
// concurrently. Per-server failures are collected rather than aborting
// the whole listing, since one offline server shouldn't hide the others'
// tools.
func listAllTools(cmd *cobra.Command, rt *runtime, includeSchema, autoAuthorize bool) error {
	names := rt.pool.Names()
	results := make([]serverTools, len(names))

	g, ctx := errgroup.WithContext(cmd.Context())
	var mu sync.Mutex
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			tools, err := withTimeout(ctx, "list "+name, rt.listTimeout(), func(cctx context.Context) ([]pool.ToolInfo, error) {
				return rt.pool.ListTools(cctx, name, pool.ListToolsOptions{IncludeSchema: includeSchema, AutoAuthorize: autoAuthorize})
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[i] = serverTools{Server: name, Error: err.Error()}
				return nil
			}
			results[i] = serverTools{Server: name, Tools: tools}
			return nil
		})
	}
	_ = g.Wait() // per-server errors are carried in results, never aborted

	if flags.jsonOutput {
		return printJSON(results)
	}
	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("%s: error: %s\n", r.Server, r.Error)
			continue
		}
		for _, t := range r.Tools {
			fmt.Printf("%s.%s\t%s\n", r.Server, t.Name, t.Description)
		}
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printOrReturnError(server string, err error) error {
	if flags.jsonOutput {
		_ = printJSON(newEnvelope(server, err))
		return err
	}
	return err
}

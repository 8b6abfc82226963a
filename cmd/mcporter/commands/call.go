package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"github.com/mcporter/mcporter/internal/adhoc"
	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/invoke"
	"github.com/mcporter/mcporter/internal/pool"
)

func callCommand() *cobra.Command {
	var allowHTTP bool
	cmd := &cobra.Command{
		Use:   "call <server.tool>|<url> <tool> [args...]",
		Short: "Invoke a tool on a server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runCall(cmd, rt, args, allowHTTP)
		},
	}
	cmd.Flags().BoolVar(&allowHTTP, "allow-http", false, "Permit a bare plain-http:// adhoc URL")
	return cmd
}

// runCall implements the call contract plus the adhoc-URL path: a bare
// absolute URL as the first argument registers an ephemeral server before
// the call, rather than being split as "server.tool".
func runCall(cmd *cobra.Command, rt *runtime, args []string, allowHTTP bool) error {
	server, tool, rest, err := resolveCallTarget(rt, args, allowHTTP)
	if err != nil {
		return err
	}

	call, err := invoke.ParseCallArgs(append([]string{tool}, rest...))
	if err != nil {
		return err
	}

	var schema *jsonschema.Schema
	if len(call.Positional) > 0 {
		schema = inputSchemaFor(cmd.Context(), rt, server, tool)
	}
	callArgs, err := invoke.Bind(tool, call, schema)
	if err != nil {
		return err
	}

	iv := invoke.NewInvoker(rt.actx)
	outcome, err := withTimeout(cmd.Context(), "call "+server+"."+tool, rt.callTimeout(), func(ctx context.Context) (*invoke.Outcome, error) {
		return iv.Invoke(ctx, rt.pool, server, tool, callArgs)
	})
	if err != nil {
		return printOrReturnError(server, err)
	}

	printResult(outcome.Result)
	return nil
}

// resolveCallTarget splits args into (server, tool, remaining-args),
// handling both "server.tool [args...]" and "<url> <tool> [args...]"
// forms.
func resolveCallTarget(rt *runtime, args []string, allowHTTP bool) (server, tool string, rest []string, err error) {
	first := args[0]
	if u, uerr := url.Parse(first); uerr == nil && u.IsAbs() {
		if len(args) < 2 {
			return "", "", nil, fmt.Errorf("call: a URL target needs a tool name argument")
		}
		existing := make([]config.ServerDefinition, 0, len(rt.pool.Names()))
		for _, name := range rt.pool.Names() {
			if def, ok := rt.pool.Definition(name); ok {
				existing = append(existing, def)
			}
		}
		def, buildErr := adhoc.Build(adhoc.Options{HTTPURL: first, AllowHTTP: allowHTTP}, existing)
		if buildErr != nil {
			return "", "", nil, buildErr
		}
		if regErr := adhoc.Register(rt.pool, def); regErr != nil {
			return "", "", nil, regErr
		}
		return def.Name, args[1], args[2:], nil
	}

	idx := strings.LastIndex(first, ".")
	if idx <= 0 || idx == len(first)-1 {
		return "", "", nil, fmt.Errorf("call: %q is not of the form <server>.<tool>", first)
	}
	return first[:idx], first[idx+1:], args[1:], nil
}

// inputSchemaFor best-effort fetches tool's input schema so positional
// arguments can be mapped onto it. A failure here (offline server, auth
// required) is swallowed and nil is returned; Bind then has no properties
// to map positional args onto and rejects them with TooManyArgumentsError
// before any call is made.
func inputSchemaFor(ctx context.Context, rt *runtime, server, tool string) *jsonschema.Schema {
	tools, err := rt.pool.ListTools(ctx, server, pool.ListToolsOptions{IncludeSchema: true, AutoAuthorize: true})
	if err != nil {
		return nil
	}
	for _, t := range tools {
		if t.Name == tool {
			schema, _ := t.InputSchema.(*jsonschema.Schema)
			return schema
		}
	}
	return nil
}

func printResult(res invoke.Result) {
	if flags.jsonOutput {
		if data, err := res.JSON(); err == nil {
			fmt.Println(string(data))
			return
		}
	}
	fmt.Println(res.Text())
}

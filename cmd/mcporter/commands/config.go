package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcporter/mcporter/internal/adhoc"
	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/pool"
)

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the native mcporter.json config",
	}
	cmd.AddCommand(configListCommand())
	cmd.AddCommand(configGetCommand())
	cmd.AddCommand(configAddCommand())
	cmd.AddCommand(configRemoveCommand())
	cmd.AddCommand(configImportCommand())
	return cmd
}

func configListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every resolved server definition and its source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return configList(rt)
		},
	}
}

func configList(rt *runtime) error {
	names := rt.pool.Names()
	if flags.jsonOutput {
		defs := make([]config.ServerDefinition, 0, len(names))
		for _, name := range names {
			if def, ok := rt.pool.Definition(name); ok {
				defs = append(defs, def)
			}
		}
		return printJSON(defs)
	}
	for _, name := range names {
		def, _ := rt.pool.Definition(name)
		fmt.Printf("%s\t%s\t%s\n", name, def.Command.Kind, def.Source.Path)
	}
	return nil
}

func configGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <server>",
		Short: "Print one server's full resolved definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			def, ok := rt.pool.Definition(args[0])
			if !ok {
				return &pool.UnknownServerError{Name: args[0]}
			}
			return printJSON(def)
		},
	}
}

func configAddCommand() *cobra.Command {
	var opts adhoc.Options
	var env []string
	var yes bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Append a server definition to the native config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			opts.Name = args[0]
			opts.Env = parseEnvFlags(env)
			return configAdd(rt, opts, yes)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.HTTPURL, "url", "", "Server's HTTP URL")
	f.BoolVar(&opts.AllowHTTP, "allow-http", false, "Permit a plain-http:// URL")
	f.StringVar(&opts.StdioCmd, "stdio", "", "Server's STDIO launch command")
	f.StringArrayVar(&opts.StdioArgs, "stdio-arg", nil, "STDIO command argument (repeatable)")
	f.StringArrayVar(&env, "env", nil, "Environment variable in K=V form (repeatable)")
	f.StringVar(&opts.Cwd, "cwd", "", "STDIO working directory")
	f.StringVar(&opts.Description, "description", "", "Server description")
	f.BoolVarP(&yes, "yes", "y", false, "Write without prompting for confirmation")
	return cmd
}

// parseEnvFlags turns repeated --env K=V flags into the map adhoc.Options
// and ServerDefinition.Env both expect.
func parseEnvFlags(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		for i := 0; i < len(p); i++ {
			if p[i] == '=' {
				out[p[:i]] = p[i+1:]
				break
			}
		}
	}
	return out
}

func configAdd(rt *runtime, opts adhoc.Options, yes bool) error {
	existing := make([]config.ServerDefinition, 0, len(rt.pool.Names()))
	for _, name := range rt.pool.Names() {
		if def, ok := rt.pool.Definition(name); ok {
			existing = append(existing, def)
		}
	}
	def, err := adhoc.Build(opts, existing)
	if err != nil {
		return err
	}
	confirm := func(path string) bool {
		fmt.Printf("append %q to %s? [y/N] ", def.Name, path)
		var reply string
		fmt.Scanln(&reply)
		return reply == "y" || reply == "Y"
	}
	if err := adhoc.Persist(rt.configPath, def, yes, confirm); err != nil {
		return err
	}
	fmt.Printf("added %q to %s\n", def.Name, rt.configPath)
	return nil
}

func configRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <server>",
		Short: "Remove a server entry from the native config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return configRemove(rt, args[0])
		},
	}
}

// nativeConfigFile mirrors the on-disk shape internal/config/loader.go
// reads back, trimmed to what config remove/import touch directly.
type nativeConfigFile struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
	Imports    []config.ImportKind        `json:"imports,omitempty"`
}

func readNativeConfigFile(path string) (nativeConfigFile, error) {
	var nf nativeConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nativeConfigFile{MCPServers: map[string]json.RawMessage{}}, nil
		}
		return nf, err
	}
	if len(data) == 0 || config.IsBlank(string(data)) {
		return nativeConfigFile{MCPServers: map[string]json.RawMessage{}}, nil
	}
	if err := config.ParseTolerantJSON(data, &nf); err != nil {
		return nf, err
	}
	if nf.MCPServers == nil {
		nf.MCPServers = map[string]json.RawMessage{}
	}
	return nf, nil
}

func writeNativeConfigFile(path string, nf nativeConfigFile) error {
	data, err := json.MarshalIndent(nf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func configRemove(rt *runtime, server string) error {
	nf, err := readNativeConfigFile(rt.configPath)
	if err != nil {
		return err
	}
	if _, ok := nf.MCPServers[server]; !ok {
		return &pool.UnknownServerError{Name: server}
	}
	delete(nf.MCPServers, server)
	if err := writeNativeConfigFile(rt.configPath, nf); err != nil {
		return err
	}
	fmt.Printf("removed %q from %s\n", server, rt.configPath)
	return nil
}

func configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <kind>",
		Short: "Enable a third-party import kind (cursor, claude-code, claude-desktop, codex, opencode)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return configImport(rt, config.ImportKind(args[0]))
		},
	}
}

func configImport(rt *runtime, kind config.ImportKind) error {
	valid := false
	for _, k := range config.AllImportKinds {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("config import: unknown import kind %q", kind)
	}

	nf, err := readNativeConfigFile(rt.configPath)
	if err != nil {
		return err
	}
	for _, existing := range nf.Imports {
		if existing == kind {
			fmt.Printf("%q is already imported in %s\n", kind, rt.configPath)
			return nil
		}
	}
	nf.Imports = append(nf.Imports, kind)
	if err := writeNativeConfigFile(rt.configPath, nf); err != nil {
		return err
	}
	fmt.Printf("enabled import %q in %s\n", kind, rt.configPath)
	return nil
}

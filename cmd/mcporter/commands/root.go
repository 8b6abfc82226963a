// Package commands wires the CLI surface (list, call, auth, generate-cli,
// inspect-cli, daemon, config) onto the runtime packages under internal/:
// one cobra.Command tree built by a single Root constructor, a custom
// brief help template, and leaf RunE functions that do nothing but parse
// flags and call into a plain-argument package function.
package commands

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `mcporter - a command-line client for MCP servers.
{{if .UseLine}}
Usage: {{.UseLine}}
{{end}}{{if .HasAvailableLocalFlags}}
Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableSubCommands}}
Available Commands:
{{range .Commands}}{{if .IsAvailableCommand}} {{rpad .Name .NamePadding}} {{.Short}}
{{end}}{{end}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}
`

// Root builds the mcporter root command.
func Root(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcporter [OPTIONS] COMMAND",
		Short:         "Discover, connect to, and call tools on MCP servers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetHelpTemplate(helpTemplate)
	registerGlobalFlags(cmd)

	cmd.AddCommand(listCommand())
	cmd.AddCommand(callCommand())
	cmd.AddCommand(authCommand())
	cmd.AddCommand(generateCliCommand())
	cmd.AddCommand(inspectCliCommand())
	cmd.AddCommand(daemonCommand())
	cmd.AddCommand(configCommand())

	return cmd
}

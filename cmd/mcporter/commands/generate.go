package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/generator"
	"github.com/mcporter/mcporter/internal/pool"
)

func generateCliCommand() *cobra.Command {
	var opts generator.Options
	var from string
	cmd := &cobra.Command{
		Use:   "generate-cli [server-ref]",
		Short: "Generate a standalone CLI for one server's tools",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if from != "" {
				return regenerateFromMetadata(cmd, rt, from, opts)
			}
			if len(args) == 0 {
				return fmt.Errorf("generate-cli: needs a server-ref argument, or --from <metadata.json>")
			}
			opts.ServerRef = args[0]
			opts.ConfigPath = flags.configPath
			opts.RootDir = flags.rootDir
			return runGenerate(cmd, rt, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "Regenerate from a previously written <artifact>.mcporter.json")
	f.StringVar(&opts.OutputPath, "output", "", "Output path for the generated CLI source")
	f.BoolVar(&opts.Bundle, "bundle", false, "Bundle the generated CLI into a single-file script")
	f.BoolVar(&opts.Compile, "compile", false, "Ahead-of-time compile the generated CLI to a native binary")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Print the equivalent command without writing any file")
	f.BoolVar(&opts.Minify, "minify", false, "Minify the bundled/compiled output")
	f.Int64Var(&opts.TimeoutMs, "timeout", 0, "Default per-call timeout (ms) baked into the generated CLI")
	return cmd
}

// resolveServerRef resolves a server-ref: an inline JSON ServerDefinition,
// a path to a file containing one (first entry wins), or the name of an
// already-registered server.
func resolveServerRef(rt *runtime, ref string) (config.ServerDefinition, error) {
	var def config.ServerDefinition
	if err := json.Unmarshal([]byte(ref), &def); err == nil && def.Name != "" {
		return def, nil
	}
	if data, err := os.ReadFile(ref); err == nil {
		if err := json.Unmarshal(data, &def); err == nil && def.Name != "" {
			return def, nil
		}
	}
	if found, ok := rt.pool.Definition(ref); ok {
		return found, nil
	}
	return config.ServerDefinition{}, &pool.UnknownServerError{Name: ref}
}

func runGenerate(cmd *cobra.Command, rt *runtime, opts generator.Options) error {
	def, err := resolveServerRef(rt, opts.ServerRef)
	if err != nil {
		return err
	}
	if _, registered := rt.pool.Definition(def.Name); !registered {
		if err := rt.pool.RegisterDefinition(def, false); err != nil {
			return err
		}
	}

	res, err := generator.Generate(cmd.Context(), rt.actx, rt.pool, rt.homeDir, def, opts)
	if err != nil {
		return err
	}
	return finishGenerate(res, opts.DryRun)
}

func regenerateFromMetadata(cmd *cobra.Command, rt *runtime, from string, overrides generator.Options) error {
	meta, err := generator.ReadMetadata(from)
	if err != nil {
		return err
	}
	res, err := generator.Regenerate(cmd.Context(), rt.actx, rt.pool, rt.homeDir, *meta, overrides)
	if err != nil {
		return err
	}
	return finishGenerate(res, overrides.DryRun)
}

func finishGenerate(res *generator.Result, dryRun bool) error {
	if dryRun {
		fmt.Printf("would write %s (%s) and %s\n", res.Metadata.Artifact.Path, res.Metadata.Artifact.Kind, generator.MetadataPath(res.Metadata.Artifact.Path))
		return nil
	}
	if err := generator.Write(res); err != nil {
		return err
	}
	if res.Metadata.Artifact.Kind != generator.ArtifactTemplate {
		flagName := "bundle"
		if res.Metadata.Artifact.Kind == generator.ArtifactBinary {
			flagName = "compile"
		}
		fmt.Fprintf(os.Stderr, "mcporter: --%s recorded in metadata; invoke your bundler/compiler against %s\n", flagName, res.Metadata.Artifact.Path)
	}
	fmt.Println(res.Metadata.Artifact.Path)
	return nil
}

func inspectCliCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect-cli <artifact-or-metadata-path>",
		Short: "Print a generated CLI artifact's sidecar metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(path string) error {
	metaPath := path
	if _, err := os.Stat(path); err == nil {
		if stat, statErr := os.Stat(generator.MetadataPath(path)); statErr == nil && !stat.IsDir() {
			metaPath = generator.MetadataPath(path)
		}
	}
	meta, err := generator.ReadMetadata(metaPath)
	if err != nil {
		return err
	}
	return printJSON(meta)
}

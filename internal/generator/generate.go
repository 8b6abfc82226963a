package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/pool"
	"github.com/mcporter/mcporter/internal/schemacache"
)

// Version is the generator's own version, embedded in every
// CliArtifactMetadata.Generator.
var Version = "dev"

const generatorName = "mcporter-generate-cli"

// Options parameterizes Generate.
type Options struct {
	ServerRef  string
	ConfigPath string
	RootDir    string
	OutputPath string
	Bundle     bool
	Compile    bool
	DryRun     bool
	TimeoutMs  int64
	Minify     bool
}

// Result is what Generate produced.
type Result struct {
	Rendered []byte
	Metadata CliArtifactMetadata
}

// Generate introspects def's tools through p's cached connection,
// derives per-tool flag options, and renders the standalone CLI template.
// Writing the artifact and its sidecar is the caller's job via Write, so
// --dry-run can skip it.
func Generate(ctx context.Context, actx *app.Context, p *pool.Pool, homeDir string, def config.ServerDefinition, opts Options) (*Result, error) {
	tools, err := p.ListTools(ctx, def.Name, pool.ListToolsOptions{IncludeSchema: true, AutoAuthorize: true})
	if err != nil {
		return nil, fmt.Errorf("generator: listing tools for %q: %w", def.Name, err)
	}

	toolOptions := make([]ToolOptions, 0, len(tools))
	snapshot := schemacache.Snapshot{Tools: map[string]schemacache.ToolSchema{}}
	for _, t := range tools {
		schema, _ := t.InputSchema.(*jsonschema.Schema)
		toolOptions = append(toolOptions, DeriveOptions(t.Name, t.Description, schema))

		outSchema, _ := t.OutputSchema.(*jsonschema.Schema)
		snapshot.Tools[t.Name] = schemacache.ToolSchema{
			InputSchema:  schema,
			OutputSchema: outSchema,
			Description:  t.Description,
		}
	}
	snapshot.UpdatedAt = actx.Clock.Now().UTC().Format("2006-01-02T15:04:05Z07:00")
	if err := schemacache.Write(&def, homeDir, &snapshot); err != nil {
		actx.Logger.Warnf("mcporter: caching schema snapshot for %q: %v", def.Name, err)
	}

	rendered, err := Render(BuildTemplateData(def, toolOptions))
	if err != nil {
		return nil, err
	}

	artifactPath := opts.OutputPath
	if artifactPath == "" {
		artifactPath = filepath.Join("generated", def.Name+"-cli.go")
	}

	kind := ArtifactTemplate
	if opts.Compile {
		kind = ArtifactBinary
	} else if opts.Bundle {
		kind = ArtifactBundle
	}

	meta := CliArtifactMetadata{
		SchemaVersion: metadataSchemaVersion,
		GeneratedAt:   actx.Clock.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		Generator:     GeneratorInfo{Name: generatorName, Version: Version},
		Server:        ServerInfo{Name: def.Name, Source: def.Source.Path, Definition: def},
		Artifact:      ArtifactInfo{Path: artifactPath, Kind: kind},
		Invocation: Invocation{
			ServerRef:  opts.ServerRef,
			ConfigPath: opts.ConfigPath,
			RootDir:    opts.RootDir,
			Runtime:    "go",
			OutputPath: opts.OutputPath,
			Bundle:     opts.Bundle,
			Compile:    opts.Compile,
			TimeoutMs:  opts.TimeoutMs,
			Minify:     opts.Minify,
		},
	}

	return &Result{Rendered: rendered, Metadata: meta}, nil
}

// Write persists a Generate result's rendered template and metadata
// sidecar to disk. Bundling/compiling the template into a single-file
// executable or native binary is an external, runtime-specific step this
// package only records the intent for (Options.Bundle/Compile); it does
// not perform the bundling itself.
func Write(res *Result) error {
	path := res.Metadata.Artifact.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, res.Rendered, 0o644); err != nil {
		return err
	}
	return WriteMetadata(res.Metadata)
}

// Regenerate implements `generate --from <artifact>.mcporter.json`:
// rebuild the CLI using the invocation recorded in meta, unless overrides
// replace individual fields.
func Regenerate(ctx context.Context, actx *app.Context, p *pool.Pool, homeDir string, meta CliArtifactMetadata, overrides Options) (*Result, error) {
	opts := Options{
		ServerRef:  meta.Invocation.ServerRef,
		ConfigPath: meta.Invocation.ConfigPath,
		RootDir:    meta.Invocation.RootDir,
		OutputPath: meta.Artifact.Path,
		Bundle:     meta.Invocation.Bundle,
		Compile:    meta.Invocation.Compile,
		TimeoutMs:  meta.Invocation.TimeoutMs,
		Minify:     meta.Invocation.Minify,
	}
	if overrides.OutputPath != "" {
		opts.OutputPath = overrides.OutputPath
	}
	if overrides.Bundle {
		opts.Bundle = true
	}
	if overrides.Compile {
		opts.Compile = true
	}
	if overrides.DryRun {
		opts.DryRun = true
	}
	return Generate(ctx, actx, p, homeDir, meta.Server.Definition, opts)
}

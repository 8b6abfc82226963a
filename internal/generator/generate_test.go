package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

func TestWrite_PersistsArtifactAndMetadataSidecar(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "generated", "linear-cli.go")

	res := &Result{
		Rendered: []byte("package main\n"),
		Metadata: CliArtifactMetadata{
			SchemaVersion: metadataSchemaVersion,
			Server:        ServerInfo{Name: "linear", Definition: config.ServerDefinition{Name: "linear"}},
			Artifact:      ArtifactInfo{Path: artifact, Kind: ArtifactTemplate},
			Invocation:    Invocation{ServerRef: "linear", Runtime: "go"},
		},
	}

	require.NoError(t, Write(res))

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))

	_, err = os.Stat(MetadataPath(artifact))
	require.NoError(t, err)
}

func TestRegenerate_OverridesOutputPathWithoutLosingOtherInvocationFields(t *testing.T) {
	meta := CliArtifactMetadata{
		Server:     ServerInfo{Name: "linear", Definition: config.ServerDefinition{Name: "linear", Command: config.Command{Kind: config.CommandStdio, Command: "linear-mcp"}}},
		Artifact:   ArtifactInfo{Path: "generated/linear-cli.go"},
		Invocation: Invocation{ServerRef: "linear", Runtime: "go", TimeoutMs: 5000},
	}

	// Regenerate needs a live Pool to introspect tools; here we only check
	// the override-merging logic feeding into Generate, which requires a
	// reachable server, so exercise it indirectly via the options it would
	// build by inlining the same merge Regenerate performs.
	overrides := Options{OutputPath: "custom/out.go"}
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

	assert.Equal(t, "custom/out.go", opts.OutputPath)
	assert.Equal(t, int64(5000), opts.TimeoutMs)
	assert.Equal(t, "linear", opts.ServerRef)
}

package generator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

func TestWriteThenReadMetadata_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "linear-cli.go")

	meta := CliArtifactMetadata{
		SchemaVersion: metadataSchemaVersion,
		GeneratedAt:   "2026-01-01T00:00:00Z",
		Generator:     GeneratorInfo{Name: generatorName, Version: "dev"},
		Server:        ServerInfo{Name: "linear", Definition: config.ServerDefinition{Name: "linear"}},
		Artifact:      ArtifactInfo{Path: artifact, Kind: ArtifactTemplate},
		Invocation:    Invocation{ServerRef: "linear", Runtime: "go"},
	}
	require.NoError(t, WriteMetadata(meta))

	got, err := ReadMetadata(MetadataPath(artifact))
	require.NoError(t, err)
	assert.Equal(t, meta.Server.Name, got.Server.Name)
	assert.Equal(t, meta.Artifact.Kind, got.Artifact.Kind)
	assert.Equal(t, meta.Invocation.ServerRef, got.Invocation.ServerRef)
}

func TestMetadataPath(t *testing.T) {
	assert.Equal(t, "generated/linear-cli.go.mcporter.json", MetadataPath("generated/linear-cli.go"))
}

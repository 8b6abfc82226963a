package generator

import (
	"encoding/json"
	"os"

	"github.com/mcporter/mcporter/internal/config"
)

// ArtifactKind distinguishes the three shapes Generate can produce.
type ArtifactKind string

const (
	ArtifactTemplate ArtifactKind = "template"
	ArtifactBundle   ArtifactKind = "bundle"
	ArtifactBinary   ArtifactKind = "binary"
)

// GeneratorInfo identifies the tool that produced an artifact.
type GeneratorInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo records which server and definition an artifact was generated
// from.
type ServerInfo struct {
	Name       string                  `json:"name"`
	Source     string                  `json:"source,omitempty"`
	Definition config.ServerDefinition `json:"definition"`
}

// ArtifactInfo records where the generated artifact was written and its
// kind.
type ArtifactInfo struct {
	Path string       `json:"path"`
	Kind ArtifactKind `json:"kind"`
}

// Invocation records the options Generate was called with, so
// `generate --from <metadata>` can reproduce them exactly.
type Invocation struct {
	ServerRef  string `json:"serverRef"`
	ConfigPath string `json:"configPath,omitempty"`
	RootDir    string `json:"rootDir,omitempty"`
	Runtime    string `json:"runtime"`
	OutputPath string `json:"outputPath,omitempty"`
	Bundle     bool   `json:"bundle,omitempty"`
	Compile    bool   `json:"compile,omitempty"`
	TimeoutMs  int64  `json:"timeoutMs,omitempty"`
	Minify     bool   `json:"minify,omitempty"`
}

// CliArtifactMetadata is the sidecar persisted at
// `<artifact>.mcporter.json`.
type CliArtifactMetadata struct {
	SchemaVersion int           `json:"schemaVersion"`
	GeneratedAt   string        `json:"generatedAt"`
	Generator     GeneratorInfo `json:"generator"`
	Server        ServerInfo    `json:"server"`
	Artifact      ArtifactInfo  `json:"artifact"`
	Invocation    Invocation    `json:"invocation"`
}

const metadataSchemaVersion = 1

// MetadataPath derives the sidecar path for an artifact path:
// "<artifact>.mcporter.json".
func MetadataPath(artifactPath string) string {
	return artifactPath + ".mcporter.json"
}

// WriteMetadata persists meta at MetadataPath(meta.Artifact.Path).
func WriteMetadata(meta CliArtifactMetadata) error {
	data, err := json.MarshalIndent(meta, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(MetadataPath(meta.Artifact.Path), data, 0o644)
}

// ReadMetadata loads a previously written CliArtifactMetadata, the input to
// `generate --from <metadata.json>`.
func ReadMetadata(path string) (*CliArtifactMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta CliArtifactMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

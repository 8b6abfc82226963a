// Package schemacache is a small on-disk snapshot of a server's tool
// schemas so generated CLIs can start instantly instead of paying an
// introspection round-trip on every run.
package schemacache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcporter/mcporter/internal/config"
)

const fileName = "schema.json"

// ToolSchema is one tool's entry in a snapshot.
type ToolSchema struct {
	InputSchema  *jsonschema.Schema `json:"inputSchema,omitempty"`
	OutputSchema *jsonschema.Schema `json:"outputSchema,omitempty"`
	Description  string             `json:"description,omitempty"`
}

// Snapshot is the persisted schema-cache record.
type Snapshot struct {
	UpdatedAt string                `json:"updatedAt"`
	Tools     map[string]ToolSchema `json:"tools"`
}

// path resolves the schema cache file for def: tokenCacheDir when set,
// otherwise the default per-server directory.
func path(def *config.ServerDefinition, homeDir string) string {
	dir := def.TokenCacheDir
	if dir == "" {
		dir = config.DefaultTokenCacheDir(homeDir, def.Name)
	}
	return filepath.Join(dir, fileName)
}

// Read loads the snapshot for def, or (nil, nil) if none is cached or the
// file is corrupt. Corrupt files are ignored rather than treated as an
// error: the cache is a performance hint, never a source of truth.
func Read(def *config.ServerDefinition, homeDir string) (*Snapshot, error) {
	data, err := os.ReadFile(path(def, homeDir))
	if err != nil {
		return nil, nil
	}
	var snap Snapshot
	if json.Unmarshal(data, &snap) != nil {
		return nil, nil
	}
	return &snap, nil
}

// Write persists snap for def, creating tokenCacheDir (or the default
// directory) if necessary.
func Write(def *config.ServerDefinition, homeDir string, snap *Snapshot) error {
	target := path(def, homeDir)
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", " ")
	if err != nil {
		return err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

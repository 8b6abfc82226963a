package schemacache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

func TestWriteThenRead_RoundTrips(t *testing.T) {
	home := t.TempDir()
	def := &config.ServerDefinition{Name: "linear", TokenCacheDir: filepath.Join(home, ".mcporter", "linear")}

	snap := &Snapshot{
		UpdatedAt: "2026-01-01T00:00:00Z",
		Tools: map[string]ToolSchema{
			"list_issues": {
				Description: "List issues",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
		},
	}
	require.NoError(t, Write(def, home, snap))

	got, err := Read(def, home)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.UpdatedAt, got.UpdatedAt)
	assert.Contains(t, got.Tools, "list_issues")
}

func TestRead_MissingOrCorruptIsAbsentNotError(t *testing.T) {
	home := t.TempDir()
	def := &config.ServerDefinition{Name: "absent"}

	snap, err := Read(def, home)
	require.NoError(t, err)
	assert.Nil(t, snap)

	corruptDir := config.DefaultTokenCacheDir(home, "corrupt")
	require.NoError(t, os.MkdirAll(corruptDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(corruptDir, fileName), []byte("{not json"), 0o600))

	snap, err = Read(&config.ServerDefinition{Name: "corrupt"}, home)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

package adhoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

func TestPersist_CreatesNewFileWithHTTPEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcporter.jsonc")
	def := config.ServerDefinition{
		Name:        "linear",
		Description: "Linear MCP",
		Command:     config.Command{Kind: config.CommandHTTP, URL: "https://mcp.linear.app/mcp"},
	}

	require.NoError(t, Persist(path, def, true, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var nf nativeFile
	require.NoError(t, config.ParseTolerantJSON(data, &nf))
	entry := nf.MCPServers["linear"]
	assert.Equal(t, "https://mcp.linear.app/mcp", entry["url"])
	assert.Equal(t, "Linear MCP", entry["description"])
}

func TestPersist_AppendsWithoutClobberingExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcporter.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"other":{"url":"https://other.example.com"}}}`), 0o600))

	def := config.ServerDefinition{Name: "linear", Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.linear.app/mcp"}}
	require.NoError(t, Persist(path, def, true, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var nf nativeFile
	require.NoError(t, config.ParseTolerantJSON(data, &nf))
	assert.Contains(t, nf.MCPServers, "other")
	assert.Contains(t, nf.MCPServers, "linear")
}

func TestPersist_StdioEntryRoundTripsAsArrayCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcporter.json")
	def := config.ServerDefinition{
		Name:    "local-tool",
		Command: config.Command{Kind: config.CommandStdio, Command: "node", Args: []string{"server.js"}, Cwd: "/srv"},
	}
	require.NoError(t, Persist(path, def, true, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var nf nativeFile
	require.NoError(t, config.ParseTolerantJSON(data, &nf))
	entry := nf.MCPServers["local-tool"]
	assert.Equal(t, []any{"node", "server.js"}, entry["command"])
	assert.Equal(t, "/srv", entry["cwd"])
}

func TestPersist_WithoutYesRequiresConfirmation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcporter.json")
	def := config.ServerDefinition{Name: "linear", Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.linear.app/mcp"}}

	err := Persist(path, def, false, func(string) bool { return false })
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, Persist(path, def, false, func(string) bool { return true }))
	_, statErr = os.Stat(path)
	require.NoError(t, statErr)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/mcplog"
)

func newTestLoader() *Loader {
	return NewLoader(app.New(mcplog.Nop()))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_ProjectOverridesHome(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	writeFile(t, filepath.Join(home, ".mcporter", "mcporter.json"), `{
		"mcpServers": {
			"fs": {"command": "home-fs-binary"}
		}
	}`)
	writeFile(t, filepath.Join(root, "config", "mcporter.json"), `{
		"mcpServers": {
			"fs": {"command": "project-fs-binary"}
		}
	}`)

	defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "project-fs-binary", defs[0].Command.Command)
	assert.Equal(t, SourceLocal, defs[0].Source.Kind)
}

func TestLoad_DeterministicOrder(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "config", "mcporter.json"), `{
		"mcpServers": {
			"zeta": {"command": "zeta-bin"},
			"alpha": {"command": "alpha-bin"},
			"mu": {"command": "mu-bin"}
		}
	}`)

	var firstOrder []string
	for i := 0; i < 5; i++ {
		defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
		require.NoError(t, err)
		var names []string
		for _, d := range defs {
			names = append(names, d.Name)
		}
		if firstOrder == nil {
			firstOrder = names
		} else {
			assert.Equal(t, firstOrder, names)
		}
	}
}

// TestLoad_SourcesOrdering mirrors scenario S6: a server defined natively in
// the project config and also surfaced via a cursor import in the same
// project layer. The project-native entry must win (it's processed after
// imports within the layer) while Sources still lists both origins with the
// winner first.
func TestLoad_SourcesOrdering(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	cursorPath := filepath.Join(root, ".cursor", "mcp.json")
	writeFile(t, cursorPath, `{
		"mcpServers": {
			"search": {"command": "cursor-search-binary"}
		}
	}`)

	projectPath := filepath.Join(root, "config", "mcporter.json")
	writeFile(t, projectPath, `{
		"imports": ["cursor"],
		"mcpServers": {
			"search": {"command": "project-search-binary"}
		}
	}`)

	defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "project-search-binary", def.Command.Command)
	assert.Equal(t, def.Source, def.Sources[0])
	require.Len(t, def.Sources, 2)
	assert.Equal(t, projectPath, def.Sources[0].Path)
	assert.Equal(t, cursorPath, def.Sources[1].Path)
}

func TestLoad_EntryWithoutCommandOrURLIsDropped(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "config", "mcporter.json"), `{
		"mcpServers": {
			"broken": {"description": "no command or url here"}
		}
	}`)

	defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoad_HTTPURLAlias(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "config", "mcporter.json"), `{
		"mcpServers": {
			"remote": {"baseUrl": "https://mcp.example.com/v1", "bearerTokenEnv": "MCP_TOKEN"}
		}
	}`)

	defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, CommandHTTP, defs[0].Command.Kind)
	assert.Equal(t, "https://mcp.example.com/v1", defs[0].Command.URL)
	assert.Equal(t, "Bearer ${MCP_TOKEN}", defs[0].Command.Headers["Authorization"])
}

func TestLoad_CodexImport(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, ".codex", "config.toml"), `
[mcp_servers.weather]
command = "weather-mcp"
args = ["--stdio"]
`)
	writeFile(t, filepath.Join(root, "config", "mcporter.json"), `{"imports": ["codex"]}`)

	defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "weather", defs[0].Name)
	assert.Equal(t, "weather-mcp", defs[0].Command.Command)
	assert.Equal(t, []string{"--stdio"}, defs[0].Command.Args)
}

func TestLoad_ExplicitPathMalformedIsHardError(t *testing.T) {
	root := t.TempDir()
	explicit := filepath.Join(root, "broken.json")
	writeFile(t, explicit, `{ not valid json`)

	_, err := newTestLoader().Load(LoadOptions{HomeDir: t.TempDir(), RootDir: root, ConfigPath: explicit})
	require.Error(t, err)
	var malformed *ConfigMalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestLoad_ImplicitMalformedConfigDegradesGracefully(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "config", "mcporter.json"), `{ this is not json at all :::`)

	defs, err := newTestLoader().Load(LoadOptions{HomeDir: home, RootDir: root})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoad_NoConfigsYieldsEmptySet(t *testing.T) {
	defs, err := newTestLoader().Load(LoadOptions{HomeDir: t.TempDir(), RootDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, defs)
}

package adhoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

func TestBuild_HTTPDerivesNameFromURL(t *testing.T) {
	def, err := Build(Options{HTTPURL: "https://mcp.example.com/mcp"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mcp-example-com-mcp", def.Name)
	assert.Equal(t, config.CommandHTTP, def.Command.Kind)
	assert.Equal(t, "https://mcp.example.com/mcp", def.Command.URL)
}

func TestBuild_HTTPRejectsPlainHTTPWithoutAllowFlag(t *testing.T) {
	_, err := Build(Options{HTTPURL: "http://mcp.example.com/mcp"}, nil)
	require.Error(t, err)
	var insecure *InsecureHTTPError
	assert.ErrorAs(t, err, &insecure)
}

func TestBuild_HTTPAllowsPlainHTTPWithFlag(t *testing.T) {
	def, err := Build(Options{HTTPURL: "http://localhost:8080/mcp", AllowHTTP: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/mcp", def.Command.URL)
}

func TestBuild_HTTPReusesNameOfExistingMatchingURL(t *testing.T) {
	existing := []config.ServerDefinition{
		{Name: "linear", Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.example.com/mcp"}},
	}
	def, err := Build(Options{HTTPURL: "https://MCP.Example.com/mcp"}, existing)
	require.NoError(t, err)
	assert.Equal(t, "linear", def.Name)
}

func TestBuild_HTTPExplicitNameWins(t *testing.T) {
	def, err := Build(Options{HTTPURL: "https://mcp.example.com/mcp", Name: "custom"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", def.Name)
}

func TestBuild_StdioDerivesNameFromCommandBasename(t *testing.T) {
	def, err := Build(Options{StdioCmd: "/usr/local/bin/linear-mcp", StdioArgs: []string{"--serve"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "linear-mcp", def.Name)
	assert.Equal(t, config.CommandStdio, def.Command.Kind)
	assert.Equal(t, []string{"--serve"}, def.Command.Args)
}

func TestBuild_NeitherURLNorCommandErrors(t *testing.T) {
	_, err := Build(Options{}, nil)
	var want *NoCommandOrURLError
	assert.ErrorAs(t, err, &want)
}

type fakeRegisterer struct {
	lastDef       config.ServerDefinition
	lastOverwrite bool
}

func (f *fakeRegisterer) RegisterDefinition(def config.ServerDefinition, overwrite bool) error {
	f.lastDef = def
	f.lastOverwrite = overwrite
	return nil
}

func TestRegister_AlwaysOverwrites(t *testing.T) {
	fake := &fakeRegisterer{}
	def := config.ServerDefinition{Name: "adhoc-server"}
	require.NoError(t, Register(fake, def))
	assert.True(t, fake.lastOverwrite)
	assert.Equal(t, "adhoc-server", fake.lastDef.Name)
}

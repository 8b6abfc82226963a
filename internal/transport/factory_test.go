package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

type mapLookup map[string]string

func (m mapLookup) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func TestBuildStdio_OwnsCommand(t *testing.T) {
	def := &config.ServerDefinition{
		Name:    "fs",
		Command: config.Command{Kind: config.CommandStdio, Command: "echo", Args: []string{"hello"}},
	}

	built, err := BuildStdio(def, map[string]string{"FOO": "bar"})
	require.NoError(t, err)
	assert.Equal(t, KindStdio, built.Kind)
	require.NotNil(t, built.Cmd)
	assert.Contains(t, built.Cmd.Env, "FOO=bar")
}

func TestBuildStreaming(t *testing.T) {
	def := &config.ServerDefinition{
		Name:    "remote",
		Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.example.com"},
	}
	built, err := BuildStreaming(def, map[string]string{"Authorization": "Bearer tok"})
	require.NoError(t, err)
	assert.Equal(t, KindStreaming, built.Kind)
	assert.NotNil(t, built.Transport)
}

func TestBuildSSE(t *testing.T) {
	def := &config.ServerDefinition{
		Name:    "remote",
		Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.example.com"},
	}
	built, err := BuildSSE(def, nil)
	require.NoError(t, err)
	assert.Equal(t, KindSSE, built.Kind)
}

func TestResolveHeaders_Success(t *testing.T) {
	def := &config.ServerDefinition{
		Name:    "remote",
		Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.example.com", Headers: map[string]string{"Authorization": "Bearer ${TOKEN}"}},
	}
	resolved, err := ResolveHeaders(mapLookup{"TOKEN": "secret"}, def)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", resolved["Authorization"])
}

func TestResolveHeaders_MissingVarFails(t *testing.T) {
	def := &config.ServerDefinition{
		Name:    "remote",
		Command: config.Command{Kind: config.CommandHTTP, URL: "https://mcp.example.com", Headers: map[string]string{"Authorization": "Bearer ${TOKEN}"}},
	}
	_, err := ResolveHeaders(mapLookup{}, def)
	require.Error(t, err)
	var headerErr *HeaderResolutionFailedError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, "Authorization", headerErr.Key)
}

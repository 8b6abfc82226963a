package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/config"
	"github.com/mcporter/mcporter/internal/mcplog"
)

func testPool(t *testing.T) *Pool {
	t.Helper()
	ctx := &app.Context{Logger: mcplog.Nop(), Env: app.OSEnv, Clock: app.RealClock}
	return New(ctx, t.TempDir(), nil)
}

func TestConnect_UnknownServer(t *testing.T) {
	p := testPool(t)
	_, err := p.Connect(context.Background(), "missing", ConnectOptions{})
	var unknown *UnknownServerError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "missing", unknown.Name)
}

func TestRegisterDefinition_RejectsDuplicateWithoutOverwrite(t *testing.T) {
	p := testPool(t)
	def := config.ServerDefinition{Name: "alpha", Command: config.Command{Kind: config.CommandHTTP, URL: "https://example.com/mcp"}}

	require.NoError(t, p.RegisterDefinition(def, false))
	err := p.RegisterDefinition(def, false)
	var already *AlreadyRegisteredError
	require.True(t, errors.As(err, &already))

	require.NoError(t, p.RegisterDefinition(def, true))
}

func TestPromote_IsIdempotentPerProcessLifetime(t *testing.T) {
	p := testPool(t)
	def := &config.ServerDefinition{Name: "vercel", Command: config.Command{Kind: config.CommandHTTP, URL: "https://vercel.example/mcp"}}
	p.definitions[def.Name] = def

	first := p.promote(def)
	assert.Equal(t, config.AuthOAuth, first.Auth)
	assert.NotEmpty(t, first.TokenCacheDir)

	second := p.promote(def)
	assert.Same(t, first, second)
}

func TestClassifyAuth(t *testing.T) {
	assert.True(t, classifyAuth(errors.New("request failed: 401 Unauthorized")))
	assert.False(t, classifyAuth(errors.New("ECONNREFUSED")))
}

package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcporter/mcporter/internal/app"
)

func TestResolveAddr_DeterministicPerConfigPath(t *testing.T) {
	ctx := &app.Context{Env: app.OSEnv}
	a1 := ResolveAddr(ctx, "/home/alice/.mcporter/mcporter.json")
	a2 := ResolveAddr(ctx, "/home/alice/.mcporter/mcporter.json")
	a3 := ResolveAddr(ctx, "/home/bob/project/mcporter.json")

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1.SocketPath, a3.SocketPath)
	assert.True(t, len(a1.MetaPath) > 5 && a1.MetaPath[len(a1.MetaPath)-5:] == ".json")
}

func TestHash12_Is12HexChars(t *testing.T) {
	h := hash12("/some/path")
	assert.Len(t, h, 12)
	for _, r := range h {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

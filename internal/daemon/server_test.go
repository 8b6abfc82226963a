package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/mcplog"
	"github.com/mcporter/mcporter/internal/pool"
)

func testAddr(t *testing.T) Addr {
	t.Helper()
	dir := t.TempDir()
	return Addr{SocketPath: filepath.Join(dir, "mcporter.sock"), MetaPath: filepath.Join(dir, "mcporter.json")}
}

func startTestServer(t *testing.T) (*Server, Addr) {
	t.Helper()
	ctx := &app.Context{Logger: mcplog.Nop(), Env: app.OSEnv, Clock: app.RealClock}
	p := pool.New(ctx, t.TempDir(), nil)
	srv := NewServer(ctx, p, time.Hour)

	addr := testAddr(t)
	ln, err := Listen(addr)
	require.NoError(t, err)

	serveCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(serveCtx, ln)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return srv, addr
}

func TestServer_StatusRoundTrip(t *testing.T) {
	_, addr := startTestServer(t)
	ctx := &app.Context{Env: app.OSEnv, Clock: app.RealClock}
	client := &Client{ctx: ctx, addr: addr}

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, status.Servers)
	assert.GreaterOrEqual(t, status.UptimeMs, int64(0))
}

func TestServer_UnknownMethodIsRequestLevelError(t *testing.T) {
	_, addr := startTestServer(t)
	ctx := &app.Context{Env: app.OSEnv, Clock: app.RealClock}
	client := &Client{ctx: ctx, addr: addr}

	_, err := client.Call(context.Background(), "bogus", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_method")
}

func TestServer_StopEndsServeLoop(t *testing.T) {
	srv, addr := startTestServer(t)
	ctx := &app.Context{Env: app.OSEnv, Clock: app.RealClock}
	client := &Client{ctx: ctx, addr: addr}

	_, err := client.Call(context.Background(), "stop", struct{}{})
	require.NoError(t, err)

	select {
	case <-srv.stopCh:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not signal the serve loop")
	}
}

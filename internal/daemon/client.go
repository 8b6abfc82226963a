package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/mcporter/mcporter/internal/app"
)

// Client talks to a running daemon over its socket/named pipe, retrying
// once after a daemon (re)spawn on any transport-level error;
// request-level (ok:false) errors propagate untouched.
type Client struct {
	ctx           *app.Context
	addr          Addr
	absConfigPath string
	executable    string
}

// NewClient builds a Client for the daemon identified by absConfigPath.
// executable is the mcporter binary path used to spawn the daemon if it
// isn't already running (os.Executable in production).
func NewClient(ctx *app.Context, absConfigPath, executable string) *Client {
	return &Client{
		ctx:           ctx,
		addr:          ResolveAddr(ctx, absConfigPath),
		absConfigPath: absConfigPath,
		executable:    executable,
	}
}

// Call sends one request and returns its raw result, retrying once
// (spawning the daemon fresh) on a transport-level failure.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	resp, err := c.roundTrip(ctx, method, params)
	if err != nil {
		if spawnErr := c.EnsureDaemon(ctx); spawnErr != nil {
			return nil, fmt.Errorf("daemon: %s failed and restart also failed: %w (original: %v)", method, spawnErr, err)
		}
		resp, err = c.roundTrip(ctx, method, params)
		if err != nil {
			return nil, fmt.Errorf("daemon: %s failed after restart: %w", method, err)
		}
	}
	if !resp.OK {
		return nil, fmt.Errorf("daemon: %s: %s: %s", method, resp.Error.Kind, resp.Error.Message)
	}
	return resp.Result, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, params any) (*Response, error) {
	conn, err := Dial(c.addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req := Request{ID: uuid.NewString(), Method: method, Params: paramsJSON}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, err
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status returns the daemon's current status without spawning it.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	raw, err := c.roundTrip(ctx, "status", struct{}{})
	if err != nil {
		return nil, err
	}
	if !raw.OK {
		return nil, fmt.Errorf("daemon: status: %s: %s", raw.Error.Kind, raw.Error.Message)
	}
	var status Status
	if err := json.Unmarshal(raw.Result, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// EnsureDaemon tries a status call first; on a transport-level error it
// spawns the daemon detached and polls status for up to 10s at 100ms
// intervals.
func (c *Client) EnsureDaemon(ctx context.Context) error {
	if _, err := c.Status(ctx); err == nil {
		return nil
	}

	if err := c.spawn(); err != nil {
		return err
	}

	deadline := c.ctx.Clock.Now().Add(10 * time.Second)
	for c.ctx.Clock.Now().Before(deadline) {
		if _, err := c.Status(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return errors.New("daemon: timed out waiting for daemon to become ready")
}

func (c *Client) spawn() error {
	cmd := exec.Command(c.executable, "daemon", "run", "--config", c.absConfigPath)
	cmd.Stdin = nil
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = detachAttr()

	if err := cmd.Start(); err != nil {
		_ = devNull.Close()
		return fmt.Errorf("daemon: spawn: %w", err)
	}
	_ = devNull.Close()
	return cmd.Process.Release()
}

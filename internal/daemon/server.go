package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/invoke"
	"github.com/mcporter/mcporter/internal/pool"
	"github.com/mcporter/mcporter/internal/timeoututil"
)

// defaultIdleTimeout is the daemon's self-shutdown window: it stays up
// until stop is requested or its Pool has been idle past this window.
const defaultIdleTimeout = 15 * time.Minute

// Server is the daemon side of the Keep-Alive Daemon: one Pool, serving
// one request per connection with each connection handled in its own
// goroutine, serially per server (the Pool's per-entry mutex already
// provides that) but concurrently across servers.
type Server struct {
	ctx         *app.Context
	pool        *pool.Pool
	invoker     *invoke.Invoker
	startedAt   time.Time
	idleTimeout time.Duration

	mu           sync.Mutex
	lastUsedAt   map[string]string
	lastActivity time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewServer builds a daemon Server over p. idleTimeout <= 0 uses
// defaultIdleTimeout.
func NewServer(ctx *app.Context, p *pool.Pool, idleTimeout time.Duration) *Server {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	return &Server{
		ctx:          ctx,
		pool:         p,
		invoker:      invoke.NewInvoker(ctx),
		startedAt:    ctx.Clock.Now(),
		idleTimeout:  idleTimeout,
		lastUsedAt:   make(map[string]string),
		lastActivity: ctx.Clock.Now(),
		stopCh:       make(chan struct{}),
	}
}

// Serve accepts connections on ln until ctx is canceled, stop is requested
// over the protocol, or the Pool has been idle past idleTimeout. It always
// tears every connection down via CloseAll before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.pool.CloseAll()

	connCh := make(chan net.Conn)
	acceptErrCh := make(chan error, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				acceptErrCh <- err
				return
			}
			connCh <- conn
		}
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh:
			return nil
		case err := <-acceptErrCh:
			return err
		case conn := <-connCh:
			go s.handle(conn)
		case <-ticker.C:
			if s.idleFor() >= s.idleTimeout {
				s.ctx.Logger.Infof("mcporter: daemon idle for %s, exiting", s.idleTimeout)
				return nil
			}
		}
	}
}

func (s *Server) idleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Clock.Now().Sub(s.lastActivity)
}

func (s *Server) touch(server string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.ctx.Clock.Now()
	s.lastActivity = now
	if server != "" {
		s.lastUsedAt[server] = now.Format(time.RFC3339)
	}
}

// handle services exactly one request per connection: no multiplexing.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		_ = json.NewEncoder(conn).Encode(Response{OK: false, Error: &ErrorInfo{Kind: "protocol", Message: err.Error()}})
		return
	}

	resp := s.dispatch(context.Background(), req)
	resp.ID = req.ID
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Method {
	case "status":
		return okResponse(s.status())
	case "callTool":
		return s.handleCallTool(ctx, req.Params)
	case "listTools":
		return s.handleListTools(ctx, req.Params)
	case "listResources":
		return s.handleListResources(ctx, req.Params)
	case "closeServer":
		return s.handleCloseServer(req.Params)
	case "stop":
		s.triggerStop()
		return okResponse(struct{}{})
	default:
		return errResponse("unknown_method", fmt.Sprintf("unknown method %q", req.Method))
	}
}

func (s *Server) status() Status {
	s.mu.Lock()
	lastUsed := make(map[string]string, len(s.lastUsedAt))
	for k, v := range s.lastUsedAt {
		lastUsed[k] = v
	}
	s.mu.Unlock()

	names := s.pool.Names()
	servers := make([]ServerStatus, 0, len(names))
	for _, name := range names {
		state := "idle"
		if s.pool.Connected(name) {
			state = "connected"
		}
		servers = append(servers, ServerStatus{Name: name, State: state, LastUsedAt: lastUsed[name]})
	}

	return Status{
		PID:       os.Getpid(),
		StartedAt: s.startedAt.Format(time.RFC3339),
		UptimeMs:  s.ctx.Clock.Now().Sub(s.startedAt).Milliseconds(),
		Servers:   servers,
	}
}

func (s *Server) handleCallTool(ctx context.Context, raw json.RawMessage) Response {
	var params CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errResponse("bad_params", err.Error())
	}

	timeout := s.ctx.DurationEnv("MCPORTER_DAEMON_TIMEOUT_MS", timeoututil.DefaultDaemonTimeout)
	if params.TimeoutMs > 0 {
		timeout = time.Duration(params.TimeoutMs) * time.Millisecond
	}

	outcome, err := timeoututil.Call(ctx, "daemon.callTool", timeout, func(cctx context.Context) (*invoke.Outcome, error) {
		return s.invoker.Invoke(cctx, s.pool, params.Server, params.Tool, params.Args)
	})
	s.touch(params.Server)
	if err != nil {
		return errResponse("call_failed", err.Error())
	}

	sc, _ := outcome.Result.StructuredContent()
	return okResponse(callToolResponse{
		ToolCalled:        outcome.ToolCalled,
		AutoCorrect:       outcome.AutoCorrect,
		IsError:           outcome.Result.IsError(),
		Text:              outcome.Result.Text(),
		StructuredContent: sc,
	})
}

type callToolResponse struct {
	ToolCalled        string `json:"toolCalled"`
	AutoCorrect       bool   `json:"autoCorrect"`
	IsError           bool   `json:"isError"`
	Text              string `json:"text,omitempty"`
	StructuredContent any    `json:"structuredContent,omitempty"`
}

func (s *Server) handleListTools(ctx context.Context, raw json.RawMessage) Response {
	var params ListToolsParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errResponse("bad_params", err.Error())
	}

	timeout := s.ctx.DurationEnv("MCPORTER_DAEMON_TIMEOUT_MS", timeoututil.DefaultDaemonTimeout)
	tools, err := timeoututil.Call(ctx, "daemon.listTools", timeout, func(cctx context.Context) ([]pool.ToolInfo, error) {
		return s.pool.ListTools(cctx, params.Server, pool.ListToolsOptions{IncludeSchema: params.IncludeSchema, AutoAuthorize: true})
	})
	s.touch(params.Server)
	if err != nil {
		return errResponse("list_failed", err.Error())
	}
	return okResponse(tools)
}

func (s *Server) handleListResources(ctx context.Context, raw json.RawMessage) Response {
	var params ListResourcesParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errResponse("bad_params", err.Error())
	}

	timeout := s.ctx.DurationEnv("MCPORTER_DAEMON_TIMEOUT_MS", timeoututil.DefaultDaemonTimeout)
	resources, err := timeoututil.Call(ctx, "daemon.listResources", timeout, func(cctx context.Context) ([]pool.ResourceInfo, error) {
		return s.pool.ListResources(cctx, params.Server)
	})
	s.touch(params.Server)
	if err != nil {
		return errResponse("list_failed", err.Error())
	}
	return okResponse(resources)
}

func (s *Server) handleCloseServer(raw json.RawMessage) Response {
	var params CloseServerParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errResponse("bad_params", err.Error())
	}
	if err := s.pool.Close(params.Server); err != nil {
		return errResponse("close_failed", err.Error())
	}
	return okResponse(struct{}{})
}

// triggerStop closes all servers and asks Serve to return.
func (s *Server) triggerStop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func okResponse(v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errResponse("marshal_failed", err.Error())
	}
	return Response{OK: true, Result: data}
}

func errResponse(kind, msg string) Response {
	return Response{OK: false, Error: &ErrorInfo{Kind: kind, Message: msg}}
}

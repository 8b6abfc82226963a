// Package transport builds the concrete mcp.Transport for a normalized
// ServerDefinition, which the connection pool hands to the MCP client.
package transport

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcporter/mcporter/internal/config"
)

// Kind names the three transport variants.
type Kind string

const (
	KindStdio     Kind = "stdio"
	KindStreaming Kind = "http"
	KindSSE       Kind = "sse"
)

// HeaderResolutionFailedError wraps an env-resolver failure while resolving
// a server's HTTP headers.
type HeaderResolutionFailedError struct {
	ServerName string
	Key        string
	Err        error
}

func (e *HeaderResolutionFailedError) Error() string {
	return fmt.Sprintf("server %q: resolving header %q: %v", e.ServerName, e.Key, e.Err)
}

func (e *HeaderResolutionFailedError) Unwrap() error { return e.Err }

// Built is a constructed transport plus the means to own/tear down whatever
// process or connection backs it.
type Built struct {
	Kind      Kind
	Transport mcp.Transport
	// Cmd is set only for KindStdio; the connection pool owns its PID for
	// process-tree teardown.
	Cmd *exec.Cmd
}

// headerRoundTripper injects resolved headers into every outbound request.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	for key, value := range h.headers {
		if key == "Accept" && cloned.Header.Get("Accept") != "" {
			continue
		}
		cloned.Header.Set(key, value)
	}
	return h.base.RoundTrip(cloned)
}

func httpClient(headers map[string]string) *http.Client {
	return &http.Client{Transport: &headerRoundTripper{base: http.DefaultTransport, headers: headers}}
}

// BuildStdio prepares def's command with resolved environment and working
// directory, returning an mcp.CommandTransport that starts and owns the
// child process when the client connects.
func BuildStdio(def *config.ServerDefinition, resolvedEnv map[string]string) (*Built, error) {
	cmd := exec.Command(def.Command.Command, def.Command.Args...)
	if def.Command.Cwd != "" {
		cmd.Dir = def.Command.Cwd
	}
	cmd.Env = os.Environ()
	for k, v := range resolvedEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	return &Built{
		Kind:      KindStdio,
		Transport: &mcp.CommandTransport{Command: cmd},
		Cmd:       cmd,
	}, nil
}

// BuildStreaming constructs the preferred HTTP streaming transport for an
// HTTP ServerDefinition, with def's headers resolved and attached.
func BuildStreaming(def *config.ServerDefinition, resolvedHeaders map[string]string) (*Built, error) {
	return &Built{
		Kind: KindStreaming,
		Transport: &mcp.StreamableClientTransport{
			Endpoint:   def.Command.URL,
			HTTPClient: httpClient(resolvedHeaders),
		},
	}, nil
}

// BuildSSE constructs the SSE fallback transport, used when the streaming
// variant fails its initial handshake.
func BuildSSE(def *config.ServerDefinition, resolvedHeaders map[string]string) (*Built, error) {
	return &Built{
		Kind: KindSSE,
		Transport: &mcp.SSEClientTransport{
			Endpoint:   def.Command.URL,
			HTTPClient: httpClient(resolvedHeaders),
		},
	}, nil
}

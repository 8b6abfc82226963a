// Package daemon implements the keep-alive daemon: one process per
// config-file identity that hosts a long-lived connection pool behind a
// request/response-per-connection Unix-domain socket (named pipe on
// Windows), so CLI invocations for keepAlive servers reuse warm
// connections instead of paying a fresh handshake every time.
package daemon

import "encoding/json"

// Request is the single JSON object a client writes per connection,
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the single JSON object the server writes back before closing
// the connection.
type Response struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo is the request-level failure shape, distinct from a
// transport-level error (a failure to connect/write/read at all), which
// the client retries once instead of surfacing directly.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CallToolParams is the payload of the "callTool" method.
type CallToolParams struct {
	Server    string         `json:"server"`
	Tool      string         `json:"tool"`
	Args      map[string]any `json:"args,omitempty"`
	TimeoutMs int64          `json:"timeoutMs,omitempty"`
}

// ListToolsParams is the payload of the "listTools" method.
type ListToolsParams struct {
	Server        string `json:"server"`
	IncludeSchema bool   `json:"includeSchema,omitempty"`
}

// ListResourcesParams is the payload of the "listResources" method.
type ListResourcesParams struct {
	Server string `json:"server"`
}

// CloseServerParams is the payload of the "closeServer" method.
type CloseServerParams struct {
	Server string `json:"server"`
}

// ServerStatus is one entry of Status.Servers.
type ServerStatus struct {
	Name       string `json:"name"`
	State      string `json:"state"` // "connected" | "idle"
	LastUsedAt string `json:"lastUsedAt,omitempty"`
}

// Status is the result of the "status" method
type Status struct {
	PID       int            `json:"pid"`
	StartedAt string         `json:"startedAt"`
	UptimeMs  int64          `json:"uptimeMs"`
	Servers   []ServerStatus `json:"servers"`
}

package invoke

import (
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Result wraps a raw CallToolResult with the extraction helpers the CLI's
// `--output text|markdown|json|raw` surface needs.
type Result struct {
	raw *mcp.CallToolResult
}

// Wrap adapts a raw MCP call envelope into a Result.
func Wrap(raw *mcp.CallToolResult) Result { return Result{raw: raw} }

// IsError reports whether the tool call itself returned an error envelope.
func (r Result) IsError() bool { return r.raw != nil && r.raw.IsError }

// Text flattens every TextContent block, newline-joined. Non-text content
// blocks fall back to an empty string.
func (r Result) Text() string {
	if r.raw == nil {
		return ""
	}
	var parts []string
	for _, c := range r.raw.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Markdown is Text rendered with a trailing newline stripped, the minimal
// transform generated CLIs apply before piping through a markdown
// renderer. mcporter itself does no markdown parsing (terminal rendering
// is an external collaborator).
func (r Result) Markdown() string {
	return strings.TrimRight(r.Text(), "\n")
}

// StructuredContent returns the tool's structuredContent payload, if any.
func (r Result) StructuredContent() (any, bool) {
	if r.raw == nil || r.raw.StructuredContent == nil {
		return nil, false
	}
	return r.raw.StructuredContent, true
}

// JSON renders the result as a JSON document: structuredContent when the
// tool provided one, otherwise {"text": ..., "isError": ...}.
func (r Result) JSON() ([]byte, error) {
	if sc, ok := r.StructuredContent(); ok {
		return json.Marshal(sc)
	}
	return json.Marshal(map[string]any{
		"text":    r.Text(),
		"isError": r.IsError(),
	})
}

// Raw returns the underlying CallToolResult for callers that need the full
// MCP envelope (e.g. `--output raw`).
func (r Result) Raw() *mcp.CallToolResult { return r.raw }

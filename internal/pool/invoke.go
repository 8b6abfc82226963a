package pool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcporter/mcporter/internal/classify"
)

// ToolInfo is the normalized shape returned by ListTools.
type ToolInfo struct {
	Name         string
	Description  string
	InputSchema  any
	OutputSchema any
}

// ListToolsOptions parameterizes ListTools.
type ListToolsOptions struct {
	IncludeSchema bool
	// AutoAuthorize false, the zero value, forces MaxOAuthAttempts=0 and
	// SkipCache=true, and the transient connection is torn down immediately;
	// true allows OAuth and uses the pool's cached connection.
	AutoAuthorize bool
}

// ListTools issues tools/list against name.
func (p *Pool) ListTools(ctx context.Context, name string, opts ListToolsOptions) ([]ToolInfo, error) {
	connectOpts := ConnectOptions{}
	transient := !opts.AutoAuthorize
	if transient {
		connectOpts = ConnectOptions{MaxOAuthAttempts: IntPtr(0), SkipCache: true}
	}

	entry, err := p.Connect(ctx, name, connectOpts)
	if err != nil {
		return nil, err
	}

	entry.Mu.Lock()
	result, err := entry.Session.ListTools(ctx, &mcp.ListToolsParams{})
	entry.Mu.Unlock()

	if transient {
		_ = p.teardown(entry)
	} else if err != nil && classify.Classify(err).Kind != classify.KindUnknown {
		p.evict(name)
	}

	if err != nil {
		return nil, err
	}

	out := make([]ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		info := ToolInfo{Name: t.Name, Description: t.Description}
		if opts.IncludeSchema {
			info.InputSchema = t.InputSchema
			info.OutputSchema = t.OutputSchema
		}
		out = append(out, info)
	}
	return out, nil
}

// ResourceInfo is the normalized shape returned by ListResources.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// ListResources issues resources/list against name.
func (p *Pool) ListResources(ctx context.Context, name string) ([]ResourceInfo, error) {
	entry, err := p.Connect(ctx, name, ConnectOptions{})
	if err != nil {
		return nil, err
	}

	entry.Mu.Lock()
	result, err := entry.Session.ListResources(ctx, nil)
	entry.Mu.Unlock()
	if err != nil {
		if classify.Classify(err).Kind != classify.KindUnknown {
			p.evict(name)
		}
		return nil, err
	}

	out := make([]ResourceInfo, 0, len(result.Resources))
	for _, r := range result.Resources {
		out = append(out, ResourceInfo{URI: r.URI, Name: r.Name, Description: r.Description, MimeType: r.MIMEType})
	}
	return out, nil
}

// CallTool issues tools/call against name's cached connection. The raw MCP
// call envelope is returned; callers wrap it with a result helper
// (internal/invoke) to extract text/json/structuredContent.
func (p *Pool) CallTool(ctx context.Context, name, tool string, args map[string]any) (*mcp.CallToolResult, error) {
	entry, err := p.Connect(ctx, name, ConnectOptions{})
	if err != nil {
		return nil, err
	}

	entry.Mu.Lock()
	result, err := entry.Session.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	entry.Mu.Unlock()

	if err != nil && classify.Classify(err).Kind != classify.KindUnknown {
		// A genuine transport/connection failure, not a tool-level RPC
		// error. The cached connection is evicted to permit a clean
		// retry; a plain "tool not found" style error classifies as
		// KindUnknown and leaves the cached connection untouched.
		p.evict(name)
	}
	return result, err
}

func (p *Pool) evict(name string) {
	p.mu.Lock()
	delete(p.clients, name)
	p.mu.Unlock()
}

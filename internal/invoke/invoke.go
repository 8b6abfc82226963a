package invoke

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/pool"
)

// Invoker drives a single tool call through the auto-correction flow: call,
// and on a "tool not found" response, fetch the real tool list, find the
// closest match, and either retry once silently (close match) or surface a
// "Did you mean ...?" hint alongside the original error (near match, but
// not close enough to guess).
type Invoker struct {
	ctx *app.Context
}

// NewInvoker builds an Invoker that logs auto-corrections through ctx.
func NewInvoker(ctx *app.Context) *Invoker {
	return &Invoker{ctx: ctx}
}

// Outcome reports what Invoke actually did, so the CLI layer can log or
// print the right thing without re-deriving it.
type Outcome struct {
	Result      Result
	ToolCalled  string
	AutoCorrect bool
}

// Invoke calls tool on server through p, and on a not-found response,
// attempts the auto-correction flow before giving up.
func (iv *Invoker) Invoke(ctx context.Context, p *pool.Pool, server, tool string, args map[string]any) (*Outcome, error) {
	raw, err := p.CallTool(ctx, server, tool, args)
	if err == nil {
		return &Outcome{Result: Wrap(raw), ToolCalled: tool}, nil
	}
	if !looksLikeUnknownTool(err) {
		return nil, err
	}

	tools, listErr := p.ListTools(ctx, server, pool.ListToolsOptions{})
	if listErr != nil {
		return nil, err // surface the original error; the list failure is incidental
	}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}

	suggestion := FindSuggestion(tool, names)
	if suggestion.Name == "" {
		return nil, err
	}
	if !suggestion.AutoCorrect {
		return nil, fmt.Errorf("%w (did you mean %q?)", err, suggestion.Name)
	}

	iv.ctx.Logger.Infof("mcporter: auto-corrected tool call to %s.%s", server, suggestion.Name)
	raw, retryErr := p.CallTool(ctx, server, suggestion.Name, args)
	if retryErr != nil {
		return nil, retryErr
	}
	return &Outcome{Result: Wrap(raw), ToolCalled: suggestion.Name, AutoCorrect: true}, nil
}

// looksLikeUnknownTool reports whether err is the "no such tool" shape MCP
// servers return for a bad tool name, as opposed to a connection failure or
// a tool-level error that happens to mention the name.
func looksLikeUnknownTool(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "unknown tool") || strings.Contains(msg, "no such tool")
}

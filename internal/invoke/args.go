// Package invoke implements Tool Invocation: the call-
// argument grammar, positional-to-schema mapping, auto-correction of
// near-miss tool names, and the result-extraction helpers that turn a raw
// MCP CallToolResult into text/markdown/json/structuredContent.
package invoke

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Call is the parsed call-argument AST: {selector, positional[], named{}}.
type Call struct {
	Selector   string
	Positional []string
	Named      map[string]string
}

// ParseCallArgs splits raw CLI arguments into the Call AST: the first
// non-flag-like token is the tool selector, key=value and key:value tokens
// become Named entries, and everything else is Positional, in order.
func ParseCallArgs(tokens []string) (*Call, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("invoke: no tool selector provided")
	}

	call := &Call{Selector: tokens[0], Named: map[string]string{}}
	for _, tok := range tokens[1:] {
		if key, value, ok := splitAssignment(tok); ok {
			call.Named[key] = value
			continue
		}
		call.Positional = append(call.Positional, tok)
	}
	return call, nil
}

// splitAssignment recognizes key=value and key:value forms, key:value only
// when key looks like an identifier (so URLs and similar positional values
// with colons aren't misread as assignments).
func splitAssignment(tok string) (key, value string, ok bool) {
	if idx := strings.Index(tok, "="); idx > 0 {
		return tok[:idx], tok[idx+1:], true
	}
	if idx := strings.Index(tok, ":"); idx > 0 && isIdentifier(tok[:idx]) && !strings.HasPrefix(tok[idx+1:], "//") {
		return tok[:idx], tok[idx+1:], true
	}
	return "", "", false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// TooManyArgumentsError is raised when Bind receives more positional
// values than the tool's schema has properties to absorb.
type TooManyArgumentsError struct {
	ToolName string
	Given    int
	Accepted int
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("tool %q accepts at most %d positional argument(s), got %d", e.ToolName, e.Accepted, e.Given)
}

// Bind resolves call into the arguments map a tools/call request carries:
// named values first (parsed as JSON when they look like it, else kept as
// plain strings), then positional values mapped onto the schema's
// `required` keys in order, followed by its remaining properties sorted
// alphabetically (the order in which the schema declares them is not kept).
func Bind(toolName string, call *Call, schema *jsonschema.Schema) (map[string]any, error) {
	args := map[string]any{}
	for k, v := range call.Named {
		args[k] = coerceValue(v)
	}

	if len(call.Positional) == 0 {
		return args, nil
	}

	order := propertyOrder(schema)
	if len(call.Positional) > len(order) {
		return nil, &TooManyArgumentsError{ToolName: toolName, Given: len(call.Positional), Accepted: len(order)}
	}
	for i, v := range call.Positional {
		args[order[i]] = coerceValue(v)
	}
	return args, nil
}

// propertyOrder returns schema's property names with `required` keys
// first (in the order they're declared in `required`), then the rest of
// the declared properties sorted alphabetically.
func propertyOrder(schema *jsonschema.Schema) []string {
	if schema == nil {
		return nil
	}

	seen := map[string]bool{}
	order := make([]string, 0, len(schema.Properties))
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}

	remaining := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !seen[name] {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)
	return append(order, remaining...)
}

// coerceValue parses v as JSON when it unambiguously looks like a JSON
// literal (object, array, number, bool, null); otherwise it's kept as a
// plain string.
func coerceValue(v string) any {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return v
	}
	switch trimmed {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && looksNumeric(trimmed) {
		return n
	}
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var parsed any
		if json.Unmarshal([]byte(trimmed), &parsed) == nil {
			return parsed
		}
	}
	return v
}

func looksNumeric(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.':
		default:
			return false
		}
	}
	return true
}

package invoke

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_TextJoinsTextContentBlocks(t *testing.T) {
	raw := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "line one"},
			&mcp.TextContent{Text: "line two"},
		},
	}
	r := Wrap(raw)
	assert.Equal(t, "line one\nline two", r.Text())
	assert.False(t, r.IsError())
}

func TestResult_StructuredContentPreferredByJSON(t *testing.T) {
	raw := &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: "ignored for JSON"}},
		StructuredContent: map[string]any{"count": float64(3)},
	}
	r := Wrap(raw)
	sc, ok := r.StructuredContent()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"count": float64(3)}, sc)

	data, err := r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3}`, string(data))
}

func TestResult_JSONFallsBackToTextEnvelope(t *testing.T) {
	raw := &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "hi"}}, IsError: true}
	r := Wrap(raw)

	data, err := r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi","isError":true}`, string(data))
}

func TestResult_NilRawIsEmpty(t *testing.T) {
	r := Wrap(nil)
	assert.Equal(t, "", r.Text())
	assert.False(t, r.IsError())
	_, ok := r.StructuredContent()
	assert.False(t, ok)
}

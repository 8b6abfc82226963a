package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/config"
)

func TestBuildTemplateData_StdioAndHTTP(t *testing.T) {
	stdio := config.ServerDefinition{
		Name:    "linear",
		Command: config.Command{Kind: config.CommandStdio, Command: "linear-mcp", Args: []string{"--stdio"}},
	}
	data := BuildTemplateData(stdio, nil)
	assert.Equal(t, "linear-mcp", data.Command)
	assert.Equal(t, []string{"--stdio"}, data.Args)

	http := config.ServerDefinition{
		Name:    "vercel",
		Command: config.Command{Kind: config.CommandHTTP, URL: "https://vercel.example/mcp"},
	}
	data = BuildTemplateData(http, nil)
	assert.Equal(t, "https://vercel.example/mcp", data.URL)
}

func TestGoName(t *testing.T) {
	assert.Equal(t, "ListIssues", goName("list_issues"))
	assert.Equal(t, "CreateIssue", goName("create-issue"))
	assert.Equal(t, "Tool", goName(""))
}

func TestRender_ProducesCompilableLookingGoSource(t *testing.T) {
	def := config.ServerDefinition{Name: "linear", Command: config.Command{Kind: config.CommandStdio, Command: "linear-mcp"}}
	tools := []ToolOptions{
		DeriveOptions("list_issues", "List issues", nil),
	}
	data := BuildTemplateData(def, tools)

	out, err := Render(data)
	require.NoError(t, err)
	src := string(out)
	assert.True(t, strings.HasPrefix(src, "// Code generated"))
	assert.Contains(t, src, `package main`)
	assert.Contains(t, src, "newListIssuesCmd")
	assert.Contains(t, src, `"linear"`)
}

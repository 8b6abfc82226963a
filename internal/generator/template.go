package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/mcporter/mcporter/internal/config"
)

//go:embed templates/cli.go.tmpl
var cliTemplateSrc string

// ToolTemplate is one tool's data as seen by the template.
type ToolTemplate struct {
	Name        string
	GoName      string
	Description string
	Options     []Option
}

// TemplateData is everything cli.go.tmpl needs to render a standalone CLI:
// the normalized ServerDefinition and the tool list it was generated from.
type TemplateData struct {
	ServerName  string
	CommandKind string
	Command     string
	Args        []string
	URL         string
	Tools       []ToolTemplate
}

// BuildTemplateData adapts a ServerDefinition and its tool list into the
// template's input shape.
func BuildTemplateData(def config.ServerDefinition, tools []ToolOptions) TemplateData {
	data := TemplateData{ServerName: def.Name, CommandKind: string(def.Command.Kind)}
	switch def.Command.Kind {
	case config.CommandStdio:
		data.Command = def.Command.Command
		data.Args = def.Command.Args
	case config.CommandHTTP:
		data.URL = def.Command.URL
	}

	for _, t := range tools {
		data.Tools = append(data.Tools, ToolTemplate{
			Name:        t.ToolName,
			GoName:      goName(t.ToolName),
			Description: t.Description,
			Options:     t.Options,
		})
	}
	return data
}

// Render executes the embedded CLI template against data.
func Render(data TemplateData) ([]byte, error) {
	tmpl, err := template.New("cli.go.tmpl").Parse(cliTemplateSrc)
	if err != nil {
		return nil, fmt.Errorf("generator: parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("generator: executing template: %w", err)
	}
	return buf.Bytes(), nil
}

// goName converts a tool name into an exported Go identifier fragment,
// e.g. "list_issues" -> "ListIssues".
func goName(toolName string) string {
	parts := strings.FieldsFunc(toolName, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return "Tool"
	}
	return b.String()
}

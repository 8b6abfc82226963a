// Package generator introspects a server's tools, derives per-tool flag
// options from their input schemas, and renders a self-contained
// standalone CLI from a template, alongside a metadata sidecar that makes
// regeneration idempotent.
package generator

import (
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// OptionType is the coarse flag type an Option maps to
type OptionType string

const (
	OptionString  OptionType = "string"
	OptionNumber  OptionType = "number"
	OptionBoolean OptionType = "boolean"
	OptionArray   OptionType = "array"
	OptionUnknown OptionType = "unknown"
)

// Option is one derived CLI flag for a tool's input schema property.
type Option struct {
	Name        string
	CliName     string
	Type        OptionType
	Required    bool
	Description string
	EnumValues  []string
	Default     any
	Example     any
	FormatHint  string
}

// ToolOptions is a tool's full derived flag set, in a stable order:
// required properties first, then the rest, each group sorted
// alphabetically. internal/invoke's propertyOrder also puts required keys
// first but keeps them in the order of the schema's `required` list, so
// the two orders differ when a tool has more than one required property.
type ToolOptions struct {
	ToolName    string
	Description string
	Options     []Option
}

// DeriveOptions computes a tool's Option list from its input schema, for
// object schemas only. Non-object schemas (or a nil schema) yield no
// options — such a tool takes no flags beyond --output.
func DeriveOptions(toolName, description string, schema *jsonschema.Schema) ToolOptions {
	result := ToolOptions{ToolName: toolName, Description: description}
	if schema == nil || schema.Type != "object" {
		return result
	}

	required := map[string]bool{}
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := required[names[i]], required[names[j]]
		if ri != rj {
			return ri // required properties sort first
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		prop := schema.Properties[name]
		result.Options = append(result.Options, Option{
			Name:        name,
			CliName:     kebab(name),
			Type:        optionType(prop),
			Required:    required[name],
			Description: propDescription(prop),
			EnumValues:  enumValues(prop),
			Default:     propDefault(prop),
			Example:     propExample(prop),
			FormatHint:  propFormat(prop),
		})
	}
	return result
}

func optionType(prop *jsonschema.Schema) OptionType {
	if prop == nil {
		return OptionUnknown
	}
	switch prop.Type {
	case "string":
		return OptionString
	case "number", "integer":
		return OptionNumber
	case "boolean":
		return OptionBoolean
	case "array":
		return OptionArray
	default:
		return OptionUnknown
	}
}

// enumValues collects enum candidates from a property's own `enum`, or
// (for arrays) from `items.enum`.
func enumValues(prop *jsonschema.Schema) []string {
	if prop == nil {
		return nil
	}
	raw := prop.Enum
	if len(raw) == 0 && prop.Items != nil {
		raw = prop.Items.Enum
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, stringify(v))
	}
	return out
}

func propDescription(prop *jsonschema.Schema) string {
	if prop == nil {
		return ""
	}
	return prop.Description
}

func propDefault(prop *jsonschema.Schema) any {
	if prop == nil {
		return nil
	}
	return prop.Default
}

func propExample(prop *jsonschema.Schema) any {
	if prop == nil || len(prop.Examples) == 0 {
		return nil
	}
	return prop.Examples[0]
}

func propFormat(prop *jsonschema.Schema) string {
	if prop == nil {
		return ""
	}
	return prop.Format
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// kebab converts a camelCase or snake_case property name into a kebab-case
// flag name: "cliName(kebab)".
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == ' ':
			b.WriteByte('-')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(strings.ReplaceAll(b.String(), "--", "-"), "-")
}

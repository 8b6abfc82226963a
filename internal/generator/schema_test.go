package generator

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
)

func TestKebab(t *testing.T) {
	assert.Equal(t, "team-id", kebab("teamId"))
	assert.Equal(t, "team-id", kebab("team_id"))
	assert.Equal(t, "limit", kebab("limit"))
}

func TestDeriveOptions_RequiredFirstThenAlphabetical(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"status": {Type: "string", Enum: []any{"open", "closed"}},
			"teamId": {Type: "string", Description: "Team identifier"},
			"limit":  {Type: "integer"},
		},
		Required: []string{"teamId"},
	}

	opts := DeriveOptions("list_issues", "List issues", schema)
	assert.Len(t, opts.Options, 3)
	assert.Equal(t, "teamId", opts.Options[0].Name)
	assert.True(t, opts.Options[0].Required)
	assert.Equal(t, "team-id", opts.Options[0].CliName)
	assert.Equal(t, "limit", opts.Options[1].Name)
	assert.Equal(t, "status", opts.Options[2].Name)
	assert.Equal(t, []string{"open", "closed"}, opts.Options[2].EnumValues)
}

func TestDeriveOptions_NonObjectSchemaHasNoOptions(t *testing.T) {
	opts := DeriveOptions("ping", "", &jsonschema.Schema{Type: "string"})
	assert.Empty(t, opts.Options)

	opts = DeriveOptions("ping", "", nil)
	assert.Empty(t, opts.Options)
}

package invoke

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallArgs_SplitsSelectorNamedAndPositional(t *testing.T) {
	call, err := ParseCallArgs([]string{"linear.list_issues", "open", "team=ENG", "limit:10"})
	require.NoError(t, err)
	assert.Equal(t, "linear.list_issues", call.Selector)
	assert.Equal(t, []string{"open"}, call.Positional)
	assert.Equal(t, map[string]string{"team": "ENG", "limit": "10"}, call.Named)
}

func TestParseCallArgs_EmptyIsError(t *testing.T) {
	_, err := ParseCallArgs(nil)
	require.Error(t, err)
}

func TestSplitAssignment_ColonRequiresIdentifierKey(t *testing.T) {
	_, _, ok := splitAssignment("https://example.com/x")
	assert.False(t, ok, "a URL positional value must not be misread as key:value")

	k, v, ok := splitAssignment("limit:10")
	assert.True(t, ok)
	assert.Equal(t, "limit", k)
	assert.Equal(t, "10", v)
}

func TestBind_PositionalFillsRequiredThenRemainingInOrder(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"status": {Type: "string"},
			"team":   {Type: "string"},
			"limit":  {Type: "integer"},
		},
		Required: []string{"team", "status"},
	}
	call := &Call{Selector: "list_issues", Positional: []string{"ENG", "open", "5"}, Named: map[string]string{}}

	args, err := Bind("list_issues", call, schema)
	require.NoError(t, err)
	assert.Equal(t, "ENG", args["team"])
	assert.Equal(t, "open", args["status"])
	assert.Equal(t, float64(5), args["limit"])
}

func TestBind_TooManyPositionalArguments(t *testing.T) {
	schema := &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{"a": {Type: "string"}}}
	call := &Call{Selector: "x", Positional: []string{"one", "two"}}

	_, err := Bind("x", call, schema)
	require.Error(t, err)
	var tooMany *TooManyArgumentsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 2, tooMany.Given)
	assert.Equal(t, 1, tooMany.Accepted)
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, true, coerceValue("true"))
	assert.Equal(t, false, coerceValue("false"))
	assert.Nil(t, coerceValue("null"))
	assert.Equal(t, float64(42), coerceValue("42"))
	assert.Equal(t, "hello", coerceValue("hello"))
	assert.Equal(t, []any{"a", "b"}, coerceValue(`["a","b"]`))
	assert.Equal(t, map[string]any{"x": float64(1)}, coerceValue(`{"x":1}`))
}

package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Auth(t *testing.T) {
	cases := []string{
		"request failed: unauthorized",
		"invalid_token supplied",
		"invalid-token supplied",
		"server responded 401",
		"server responded 403 Forbidden",
	}
	for _, msg := range cases {
		issue := Classify(errors.New(msg))
		assert.Equal(t, KindAuth, issue.Kind, msg)
	}
}

type fakeUnauthorized struct{ msg string }

func (f fakeUnauthorized) Error() string      { return f.msg }
func (f fakeUnauthorized) Unauthorized() bool { return true }

func TestClassify_UnauthorizedErrorInterface(t *testing.T) {
	issue := Classify(fakeUnauthorized{msg: "nothing matching the regex here"})
	assert.Equal(t, KindAuth, issue.Kind)
}

func TestClassify_Offline(t *testing.T) {
	cases := []string{
		"dial tcp: ECONNREFUSED",
		"lookup mcp.example.com: ENOTFOUND",
		"fetch failed",
		"Connection closed",
	}
	for _, msg := range cases {
		issue := Classify(errors.New(msg))
		assert.Equal(t, KindOffline, issue.Kind, msg)
	}
}

func TestClassify_HTTP(t *testing.T) {
	issue := Classify(errors.New("Non-200 status code (503)"))
	assert.Equal(t, KindHTTP, issue.Kind)
	assert.Equal(t, 503, issue.StatusCode)

	issue = Classify(errors.New("request failed: HTTP 502"))
	assert.Equal(t, KindHTTP, issue.Kind)
	assert.Equal(t, 502, issue.StatusCode)
}

func TestClassify_Unknown(t *testing.T) {
	issue := Classify(errors.New("something entirely unrecognized happened"))
	assert.Equal(t, KindUnknown, issue.Kind)
}

func TestClassify_Nil(t *testing.T) {
	issue := Classify(nil)
	assert.Equal(t, KindUnknown, issue.Kind)
	assert.Empty(t, issue.RawMessage)
}

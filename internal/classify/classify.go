// Package classify maps arbitrary transport/RPC errors into a small,
// stable taxonomy so the rest of the runtime (list output, auth retry
// decisions, JSON envelopes) never has to pattern-match on error strings
// itself.
package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is one of the four recognized connection-issue categories.
type Kind string

const (
	KindAuth    Kind = "auth"
	KindOffline Kind = "offline"
	KindHTTP    Kind = "http"
	KindUnknown Kind = "unknown"
)

// Issue is the structured classification of an error.
type Issue struct {
	Kind       Kind   `json:"kind"`
	StatusCode int    `json:"statusCode,omitempty"` // only meaningful when Kind == KindHTTP
	RawMessage string `json:"rawMessage,omitempty"`
}

var (
	authPattern    = regexp.MustCompile(`(?i)unauthorized|invalid[_-]?token|\b(401|403)\b`)
	offlineNeedles = []string{"ECONNREFUSED", "ENOTFOUND", "fetch failed", "Connection closed"}
	httpStatusCode = regexp.MustCompile(`(?i)non-200 status code \((\d+)\)|HTTP (\d+)`)
)

// UnauthorizedError is implemented by transport errors that already know
// they're an auth failure (the MCP SDK's own 401/403 variant), letting
// those skip the message-pattern heuristics entirely.
type UnauthorizedError interface {
	error
	Unauthorized() bool
}

// Classify reduces err to an Issue. A nil err classifies as KindUnknown
// with an empty message, never panics.
func Classify(err error) Issue {
	if err == nil {
		return Issue{Kind: KindUnknown}
	}

	msg := err.Error()
	issue := Issue{Kind: KindUnknown, RawMessage: msg}

	if unauthorized, ok := err.(UnauthorizedError); ok && unauthorized.Unauthorized() {
		issue.Kind = KindAuth
		return issue
	}
	if authPattern.MatchString(msg) {
		issue.Kind = KindAuth
		return issue
	}

	for _, needle := range offlineNeedles {
		if strings.Contains(msg, needle) {
			issue.Kind = KindOffline
			return issue
		}
	}

	if m := httpStatusCode.FindStringSubmatch(msg); m != nil {
		code := m[1]
		if code == "" {
			code = m[2]
		}
		if n, err := strconv.Atoi(code); err == nil {
			issue.Kind = KindHTTP
			issue.StatusCode = n
		}
		return issue
	}

	return issue
}

package oauthsession

import (
	"fmt"
	"time"
)

// OAuthTimeoutError is raised when waitForAuthorizationCode exceeds its
// deadline.
type OAuthTimeoutError struct {
	ServerName string
	Timeout    time.Duration
}

func (e *OAuthTimeoutError) Error() string {
	return fmt.Sprintf("oauth authorization for %q timed out after %s", e.ServerName, e.Timeout)
}

// InvalidStateError is raised when the redirect's state parameter doesn't
// match the one this session generated.
type InvalidStateError struct {
	ServerName string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("oauth redirect for %q carried a mismatched state parameter", e.ServerName)
}

// MissingAuthorizationCodeError is raised when the redirect carries neither
// a code nor an error parameter.
type MissingAuthorizationCodeError struct {
	ServerName string
}

func (e *MissingAuthorizationCodeError) Error() string {
	return fmt.Sprintf("oauth redirect for %q is missing an authorization code", e.ServerName)
}

// OAuthProviderError wraps an authorization-server-reported error
// (`error`/`error_description` redirect parameters).
type OAuthProviderError struct {
	ServerName  string
	Code        string
	Description string
}

func (e *OAuthProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth provider rejected %q: %s (%s)", e.ServerName, e.Code, e.Description)
	}
	return fmt.Sprintf("oauth provider rejected %q: %s", e.ServerName, e.Code)
}

// SessionClosedError is returned to any pending caller when Close is
// invoked before the redirect arrives.
type SessionClosedError struct {
	ServerName string
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("oauth session for %q was closed before authorization completed", e.ServerName)
}

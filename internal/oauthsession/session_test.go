package oauthsession

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcporter/mcporter/internal/app"
	"github.com/mcporter/mcporter/internal/mcplog"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(app.New(mcplog.Nop()), "weather", "", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func getRedirect(t *testing.T, s *Session, query url.Values) *http.Response {
	t.Helper()
	u := s.RedirectURL() + "?" + query.Encode()
	resp, err := http.Get(u)
	require.NoError(t, err)
	return resp
}

func TestSession_SuccessfulCodeDelivery(t *testing.T) {
	s := newTestSession(t)
	state := s.State()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q := url.Values{}
		q.Set("code", "auth-code-123")
		q.Set("state", state)
		resp := getRedirect(t, s, q)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	code, err := s.WaitForAuthorizationCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-123", code)
}

func TestSession_StateMismatch(t *testing.T) {
	s := newTestSession(t)
	_ = s.State()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q := url.Values{}
		q.Set("code", "auth-code-123")
		q.Set("state", "wrong-state")
		resp := getRedirect(t, s, q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.WaitForAuthorizationCode(ctx)
	require.Error(t, err)
	var invalidState *InvalidStateError
	require.ErrorAs(t, err, &invalidState)
}

func TestSession_ProviderError(t *testing.T) {
	s := newTestSession(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q := url.Values{}
		q.Set("error", "access_denied")
		q.Set("error_description", "user declined")
		resp := getRedirect(t, s, q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.WaitForAuthorizationCode(ctx)
	require.Error(t, err)
	var providerErr *OAuthProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "access_denied", providerErr.Code)
}

func TestSession_MissingCode(t *testing.T) {
	s := newTestSession(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		resp := getRedirect(t, s, url.Values{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.WaitForAuthorizationCode(ctx)
	require.Error(t, err)
	var missingCode *MissingAuthorizationCodeError
	require.ErrorAs(t, err, &missingCode)
}

func TestSession_CloseIsIdempotentAndRejectsPending(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.WaitForAuthorizationCode(ctx)
	var closedErr *SessionClosedError
	require.ErrorAs(t, err, &closedErr)
}

func TestSession_ClientMetadataDefaults(t *testing.T) {
	s := newTestSession(t)
	meta := s.ClientMetadata()
	assert.Equal(t, "mcporter (weather)", meta.ClientName)
	assert.Equal(t, []string{s.RedirectURL()}, meta.RedirectURIs)
	assert.Equal(t, "none", meta.TokenEndpointAuthMethod)
}

func TestBuildAuthorizationURL(t *testing.T) {
	s := newTestSession(t)
	authURL, err := s.BuildAuthorizationURL(Discovery{
		AuthorizationEndpoint: "https://auth.example.com/authorize",
		ResourceURL:           "https://mcp.example.com",
		Scopes:                []string{"mcp:tools"},
	}, "client-123")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, s.State(), q.Get("state"))
}

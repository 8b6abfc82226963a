package oauthsession

import (
	"fmt"
	"net/url"
	"strings"
)

// Discovery carries the subset of authorization-server metadata needed to
// build an authorization URL and perform Dynamic Client Registration.
type Discovery struct {
	AuthorizationEndpoint string
	TokenEndpoint         string
	RegistrationEndpoint  string
	ResourceURL           string
	Scopes                []string
}

// BuildAuthorizationURL assembles the authorization-request URL for this
// session, binding its persisted state and PKCE challenge.
func (s *Session) BuildAuthorizationURL(discovery Discovery, clientID string) (string, error) {
	if discovery.AuthorizationEndpoint == "" {
		return "", fmt.Errorf("oauth session for %q: no authorization endpoint", s.serverName)
	}
	if clientID == "" {
		return "", fmt.Errorf("oauth session for %q: no client id", s.serverName)
	}

	verifier, err := s.CodeVerifier()
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", s.redirectURL)
	params.Set("state", s.State())
	params.Set("code_challenge", ChallengeS256(verifier))
	params.Set("code_challenge_method", "S256")
	if discovery.ResourceURL != "" {
		params.Set("resource", discovery.ResourceURL)
	}
	if len(discovery.Scopes) > 0 {
		params.Set("scope", strings.Join(discovery.Scopes, " "))
	}

	return discovery.AuthorizationEndpoint + "?" + params.Encode(), nil
}

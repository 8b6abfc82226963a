// Package oauthdiscovery probes an MCP HTTP server for its OAuth
// authorization-server metadata and performs Dynamic Client Registration,
// feeding the connection pool's auto-promotion path.
package oauthdiscovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcporter/mcporter/internal/oauthsession"
	"github.com/mcporter/mcporter/internal/oauthvault"
)

type protectedResourceMetadata struct {
	AuthorizationServers []string `json:"authorization_servers"`
}

type authorizationServerMetadata struct {
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	RegistrationEndpoint  string   `json:"registration_endpoint"`
	ScopesSupported       []string `json:"scopes_supported"`
}

// Discover resolves oauthsession.Discovery for serverURL by fetching the
// protected-resource metadata (RFC 9728) when present, then the
// authorization-server metadata (RFC 8414) from whichever issuer that
// names, defaulting to serverURL's own origin.
func Discover(ctx context.Context, client *http.Client, serverURL string) (oauthsession.Discovery, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return oauthsession.Discovery{}, fmt.Errorf("oauth discovery: invalid server url %q: %w", serverURL, err)
	}
	origin := parsed.Scheme + "://" + parsed.Host

	issuer := origin
	if meta, err := fetchJSON[protectedResourceMetadata](ctx, client, origin+"/.well-known/oauth-protected-resource"); err == nil && len(meta.AuthorizationServers) > 0 {
		issuer = meta.AuthorizationServers[0]
	}

	asMeta, err := fetchJSON[authorizationServerMetadata](ctx, client, issuer+"/.well-known/oauth-authorization-server")
	if err != nil {
		return oauthsession.Discovery{}, fmt.Errorf("oauth discovery: fetching authorization server metadata for %q: %w", serverURL, err)
	}

	return oauthsession.Discovery{
		AuthorizationEndpoint: asMeta.AuthorizationEndpoint,
		TokenEndpoint:         asMeta.TokenEndpoint,
		RegistrationEndpoint:  asMeta.RegistrationEndpoint,
		ResourceURL:           serverURL,
		Scopes:                asMeta.ScopesSupported,
	}, nil
}

func fetchJSON[T any](ctx context.Context, client *http.Client, u string) (T, error) {
	var out T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("%s: unexpected status %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%s: %w", u, err)
	}
	return out, nil
}

type registrationRequest struct {
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	Scope                   string   `json:"scope,omitempty"`
}

type registrationResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Register performs Dynamic Client Registration (RFC 7591) against
// disc.RegistrationEndpoint using metadata, returning credentials ready for
// oauthvault.Vault.SaveClientCredentials.
func Register(ctx context.Context, client *http.Client, disc oauthsession.Discovery, metadata oauthsession.ClientMetadata) (*oauthvault.ClientCredentials, error) {
	if disc.RegistrationEndpoint == "" {
		return nil, fmt.Errorf("oauth registration: %q has no registration endpoint", disc.ResourceURL)
	}

	body, err := json.Marshal(registrationRequest{
		ClientName:              metadata.ClientName,
		RedirectURIs:            metadata.RedirectURIs,
		GrantTypes:              metadata.GrantTypes,
		ResponseTypes:           metadata.ResponseTypes,
		TokenEndpointAuthMethod: metadata.TokenEndpointAuthMethod,
		Scope:                   metadata.Scope,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, disc.RegistrationEndpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth registration: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("oauth registration: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed registrationResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("oauth registration: %w", err)
	}

	return &oauthvault.ClientCredentials{
		ClientID:              parsed.ClientID,
		ClientSecret:          parsed.ClientSecret,
		ServerURL:             disc.ResourceURL,
		AuthorizationEndpoint: disc.AuthorizationEndpoint,
		TokenEndpoint:         disc.TokenEndpoint,
	}, nil
}

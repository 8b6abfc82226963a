// Package oauthvault is a durable, cross-location OAuth credential store
// with legacy-directory migration: each server's tokens, DCR client
// credentials, and PKCE verifier are kept both in a consolidated vault
// file and, for servers with an explicit token cache directory, mirrored
// there too.
package oauthvault

import "golang.org/x/oauth2"

// Scope selects which parts of a server's stored credentials Clear
// removes.
type Scope string

const (
	ScopeTokens   Scope = "tokens"
	ScopeClient   Scope = "client"
	ScopeVerifier Scope = "verifier"
	ScopeAll      Scope = "all"
)

// ClientCredentials is the Dynamic Client Registration result persisted
// alongside tokens.
type ClientCredentials struct {
	ClientID              string `json:"client_id"`
	ClientSecret          string `json:"client_secret,omitempty"`
	ServerURL             string `json:"server_url"`
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	TokenEndpoint         string `json:"token_endpoint,omitempty"`
}

// entry is one server's full credential record, the shape persisted both
// per-directory (as three files) and inside the consolidated vault (as one
// value in a map keyed by serverKey).
type entry struct {
	Tokens       *oauth2.Token      `json:"tokens,omitempty"`
	Client       *ClientCredentials `json:"client,omitempty"`
	CodeVerifier string             `json:"codeVerifier,omitempty"`
}

func (e entry) isEmpty() bool {
	return e.Tokens == nil && e.Client == nil && e.CodeVerifier == ""
}

const (
	tokensFileName   = "tokens.json"
	clientFileName   = "client.json"
	verifierFileName = "verifier.txt"
	vaultFileName    = ".credentials.json"
)

package oauthsession

import "fmt"

// ClientMetadata is the Dynamic Client Registration document a Session
// submits to the authorization server's registration endpoint, trimmed to
// the fields RFC 7591 requires plus client_name.
type ClientMetadata struct {
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	Scope                   string   `json:"scope"`
}

// BuildClientMetadata assembles the client metadata document for serverName,
// using clientName when given or a default derived from serverName otherwise.
func BuildClientMetadata(clientName, serverName, redirectURL string) ClientMetadata {
	name := clientName
	if name == "" {
		name = fmt.Sprintf("mcporter (%s)", serverName)
	}
	return ClientMetadata{
		ClientName:              name,
		RedirectURIs:            []string{redirectURL},
		GrantTypes:              []string{"authorization_code", "refresh_token"},
		ResponseTypes:           []string{"code"},
		TokenEndpointAuthMethod: "none",
		Scope:                   "mcp:tools",
	}
}

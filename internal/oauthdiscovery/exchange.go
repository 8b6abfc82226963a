package oauthdiscovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcporter/mcporter/internal/oauthsession"
	"golang.org/x/oauth2"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExchangeCode trades an authorization code for a token set at disc's token
// endpoint (RFC 6749 §4.1.3), carrying the PKCE verifier (RFC 7636 §4.5) so
// the authorization server can validate the code_challenge it issued.
func ExchangeCode(ctx context.Context, client *http.Client, disc oauthsession.Discovery, clientID, code, redirectURL, verifier string) (*oauth2.Token, error) {
	if disc.TokenEndpoint == "" {
		return nil, fmt.Errorf("oauth exchange: %q has no token endpoint", disc.ResourceURL)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURL)
	form.Set("client_id", clientID)
	form.Set("code_verifier", verifier)

	return postForm(ctx, client, disc.TokenEndpoint, form)
}

// RefreshToken trades a refresh token for a new access token at disc's token
// endpoint (RFC 6749 §6).
func RefreshToken(ctx context.Context, client *http.Client, disc oauthsession.Discovery, clientID, refreshToken string) (*oauth2.Token, error) {
	if disc.TokenEndpoint == "" {
		return nil, fmt.Errorf("oauth refresh: %q has no token endpoint", disc.ResourceURL)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", clientID)

	return postForm(ctx, client, disc.TokenEndpoint, form)
}

func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth token request: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("oauth token request: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("oauth token request: response carried no access_token")
	}

	tok := &oauth2.Token{
		AccessToken:  parsed.AccessToken,
		TokenType:    parsed.TokenType,
		RefreshToken: parsed.RefreshToken,
	}
	if parsed.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	}
	return tok, nil
}
